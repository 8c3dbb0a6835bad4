package layout

import "math"

// minContentWidth 防止内边距吃掉全部列宽时出现非正的折行宽度。
const minContentWidth = 1e-3

// RowHeights 是行高计算的结果。
type RowHeights struct {
	// Rows 是每一行的最终高度。
	Rows []float64 `json:"rows"`
	// Cells 与 Grid.Anchors 一一对应，是每个锚点单元格的最终高度。
	Cells []float64 `json:"cells"`
}

// ResolveRowHeights 测量每个锚点单元格折行后的高度（加上两倍内边距），与行高下限取较大值，
// 并在行内把运行中的最大值回填给已访问的单元格，使同一行所有单元格高度一致。
// 纵向合并的单元格只影响其起始行。
func ResolveRowHeights(g *Grid, rows []Row, columns []float64, style TableStyle, m TextMeasurer) (RowHeights, error) {
	out := RowHeights{
		Rows:  make([]float64, g.Rows),
		Cells: make([]float64, len(g.Anchors)),
	}
	wrappers := newWrapperSet(m, style)

	next := 0 // Anchors 按行优先排列
	for r := 0; r < g.Rows; r++ {
		declared := rows[r].Height
		maxHeight := 0.0
		var visited []int
		for next < len(g.Anchors) && g.Anchors[next].Row == r {
			a := g.Anchors[next]
			cell := g.Cell(a)
			w, err := wrappers.get(cell)
			if err != nil {
				return RowHeights{}, &CellError{Op: "测量单元格", Row: r, Col: a.Col, Err: err}
			}
			inner := math.Max(spanWidth(columns, a.Col, a.Colspan)-2*style.CellPadding, minContentWidth)
			block, err := w.Wrap(cell.Content, WrapOptions{MaxWidth: inner, Hyphenate: style.Hyphenate, Align: cell.HAlign})
			if err != nil {
				return RowHeights{}, &CellError{Op: "折行", Row: r, Col: a.Col, Err: err}
			}
			h := math.Max(block.Height+2*style.CellPadding, declared)
			out.Cells[next] = h
			if h > maxHeight {
				maxHeight = h
				for _, i := range visited {
					out.Cells[i] = maxHeight
				}
			} else {
				out.Cells[next] = maxHeight
			}
			visited = append(visited, next)
			next++
		}
		switch {
		case len(visited) > 0:
			out.Rows[r] = maxHeight
		case declared > 0:
			out.Rows[r] = declared
		default:
			out.Rows[r] = style.defaultRowHeight()
		}
	}
	return out, nil
}

// wrapperSet 按 (字体, 字号) 复用折行器，只在一次表格布局内有效。
type wrapperSet struct {
	m     TextMeasurer
	style TableStyle
	cache map[wrapperKey]*Wrapper
}

type wrapperKey struct {
	font FontRef
	size float64
}

func newWrapperSet(m TextMeasurer, style TableStyle) *wrapperSet {
	return &wrapperSet{m: m, style: style, cache: map[wrapperKey]*Wrapper{}}
}

func (s *wrapperSet) get(cell Cell) (*Wrapper, error) {
	key := wrapperKey{font: s.style.Font, size: s.style.FontSize}
	if cell.Font != "" {
		key.font = cell.Font
	}
	if cell.FontSize > 0 {
		key.size = cell.FontSize
	}
	if w, ok := s.cache[key]; ok {
		return w, nil
	}
	w, err := NewWrapper(s.m, key.font, key.size, s.style.LineSpacing)
	if err != nil {
		return nil, err
	}
	s.cache[key] = w
	return w, nil
}
