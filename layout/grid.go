package layout

import (
	"go.uber.org/zap"
)

// SlotKind 区分网格中每个格子的角色。
type SlotKind int

const (
	// SlotEmpty 是行内单元格不足时留下的空位。
	SlotEmpty SlotKind = iota
	// SlotAnchor 是单元格（含合并区域）的左上角，唯一持有内容的格子。
	SlotAnchor
	// SlotSpanned 是被其他单元格合并覆盖的占位格。
	SlotSpanned
)

// Slot 是网格中的一个格子。占位格通过 Row/Col 指向其锚点，而不是持有指针。
type Slot struct {
	Kind SlotKind `json:"kind"`
	// 锚点所在的行列（锚点自身即为自己的坐标）
	Row int `json:"row"`
	Col int `json:"col"`
	// Header 复制自锚点所在行的表头标记
	Header bool `json:"header,omitempty"`
}

// Anchor 记录一个实际放入网格的单元格及其裁剪后的合并范围。
type Anchor struct {
	Row     int `json:"row"`
	Col     int `json:"col"`
	Cell    int `json:"cell"` // 在 rows[Row].Cells 中的下标
	Colspan int `json:"colspan"`
	Rowspan int `json:"rowspan"`
}

// Grid 是 rows × cols 的稠密网格。
type Grid struct {
	Rows    int      `json:"rows"`
	Cols    int      `json:"cols"`
	Slots   []Slot   `json:"slots"`
	Anchors []Anchor `json:"anchors"`

	index map[[2]int]int // 锚点坐标 -> Anchors 下标
	cells [][]Cell
}

// At 返回 (r, c) 处的格子。
func (g *Grid) At(r, c int) Slot {
	return g.Slots[r*g.Cols+c]
}

// AnchorAt 返回覆盖 (r, c) 的锚点；空位返回 false。
func (g *Grid) AnchorAt(r, c int) (Anchor, bool) {
	s := g.At(r, c)
	if s.Kind == SlotEmpty {
		return Anchor{}, false
	}
	i, ok := g.index[[2]int{s.Row, s.Col}]
	if !ok {
		return Anchor{}, false
	}
	return g.Anchors[i], true
}

// Cell 返回锚点对应的单元格。
func (g *Grid) Cell(a Anchor) Cell {
	return g.cells[a.Row][a.Cell]
}

// RowAnchors 返回锚定在第 r 行的所有锚点（从左到右）。
func (g *Grid) RowAnchors(r int) []Anchor {
	var out []Anchor
	for _, a := range g.Anchors {
		if a.Row == r {
			out = append(out, a)
		}
	}
	return out
}

// BuildGrid 把行列表展开为稠密网格。超出网格的合并范围会被裁剪，
// 在行内找不到空位的单元格会被丢弃并记录警告。
func BuildGrid(rows []Row, opts ...Option) (*Grid, error) {
	o := newOptions(opts)
	cols := 0
	for _, row := range rows {
		sum := 0
		for _, cell := range row.Cells {
			sum += cell.colspan()
		}
		if sum > cols {
			cols = sum
		}
	}

	g := &Grid{
		Rows:  len(rows),
		Cols:  cols,
		Slots: make([]Slot, len(rows)*cols),
		index: map[[2]int]int{},
		cells: make([][]Cell, len(rows)),
	}
	for r, row := range rows {
		g.cells[r] = row.Cells
	}

	occupied := func(r, c int) bool { return g.Slots[r*cols+c].Kind != SlotEmpty }

	for r, row := range rows {
		col := 0
		for ci, cell := range row.Cells {
			for col < cols && occupied(r, col) {
				col++
			}
			if col >= cols {
				o.log.Warn("单元格超出网格，已丢弃",
					zap.Int("row", r), zap.Int("cell", ci), zap.String("content", cell.Content))
				continue
			}

			colspan := cell.colspan()
			if col+colspan > cols {
				colspan = cols - col
			}
			// 不覆盖上方行纵向合并占用的格子
			for k := 1; k < colspan; k++ {
				if occupied(r, col+k) {
					colspan = k
					break
				}
			}
			rowspan := cell.rowspan()
			if r+rowspan > len(rows) {
				rowspan = len(rows) - r
			}
			if colspan != cell.colspan() || rowspan != cell.rowspan() {
				o.log.Warn("单元格合并范围超出网格，已裁剪",
					zap.Int("row", r), zap.Int("col", col),
					zap.Int("colspan", colspan), zap.Int("rowspan", rowspan))
			}

			for dr := 0; dr < rowspan; dr++ {
				for dc := 0; dc < colspan; dc++ {
					kind := SlotSpanned
					if dr == 0 && dc == 0 {
						kind = SlotAnchor
					}
					g.Slots[(r+dr)*cols+col+dc] = Slot{Kind: kind, Row: r, Col: col, Header: row.Header}
				}
			}
			g.index[[2]int{r, col}] = len(g.Anchors)
			g.Anchors = append(g.Anchors, Anchor{Row: r, Col: col, Cell: ci, Colspan: colspan, Rowspan: rowspan})
			col += colspan
		}
	}
	return g, nil
}
