package layout

import (
	"fmt"

	"go.uber.org/zap"
)

// Table 是一次表格布局的中间产物：网格、列宽、行高与单元格位置都只在本次调用内有效。
type Table struct {
	rows      []Row
	width     float64
	style     TableStyle
	grid      *Grid
	columns   []float64
	heights   RowHeights
	positions []CellPosition
	byRow     [][]int // 每行锚定的 positions 下标
	wrappers  *wrapperSet
	log       *zap.Logger
}

// PrepareTable 依次执行网格构建、列宽分配、行高计算与位置计算。
func PrepareTable(rows []Row, width float64, style TableStyle, m TextMeasurer, opts ...Option) (*Table, error) {
	o := newOptions(opts)
	if m == nil {
		return nil, fmt.Errorf("layout: 缺少文本测量器")
	}
	grid, err := BuildGrid(rows, opts...)
	if err != nil {
		return nil, err
	}
	columns, err := SolveColumns(grid, width, opts...)
	if err != nil {
		return nil, err
	}
	heights, err := ResolveRowHeights(grid, rows, columns, style, m)
	if err != nil {
		return nil, err
	}
	positions := CellPositions(grid, columns, heights.Rows, style.defaultRowHeight())

	byRow := make([][]int, grid.Rows)
	for i, pos := range positions {
		byRow[pos.Anchor.Row] = append(byRow[pos.Anchor.Row], i)
	}
	return &Table{
		rows:      rows,
		width:     width,
		style:     style,
		grid:      grid,
		columns:   columns,
		heights:   heights,
		positions: positions,
		byRow:     byRow,
		wrappers:  newWrapperSet(m, style),
		log:       o.log,
	}, nil
}

// Grid 返回展开后的网格。
func (t *Table) Grid() *Grid { return t.grid }

func (t *Table) Columns() []float64 { return t.columns }

func (t *Table) Heights() RowHeights { return t.heights }

func (t *Table) Positions() []CellPosition { return t.positions }

func (t *Table) Width() float64 { return t.width }

// Len 返回行数。
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) RowHeight(r int) float64 { return t.heights.Rows[r] }

// drawRow 在 top 处绘制第 r 行锚定的所有单元格。visible 返回锚点在本页可见的高度。
func (t *Table) drawRow(c Canvas, r int, x, top float64, visible func(a Anchor) float64) error {
	row := t.rows[r]
	for _, i := range t.byRow[r] {
		pos := t.positions[i]
		cell := t.grid.Cell(pos.Anchor)
		h := pos.Height
		if visible != nil {
			h = visible(pos.Anchor)
		}
		box := Rect{X: x + pos.X, Y: top - h, Width: pos.Width, Height: h}
		if err := t.paintCell(c, cell, box, row.Header || cell.Header, r); err != nil {
			return &CellError{Op: "绘制单元格", Row: r, Col: pos.Anchor.Col, Err: err}
		}
	}
	return nil
}

// paintCell 依次绘制背景、整体边框、分边边框与内容。
func (t *Table) paintCell(c Canvas, cell Cell, box Rect, header bool, r int) error {
	style := t.style
	if bg := t.background(cell, header, r); bg != nil {
		fill := box
		fill.Style = ShapeStyle{Fill: bg}
		if err := c.Rect(fill); err != nil {
			return err
		}
	}

	border := cell.BorderWidth
	if border == 0 {
		border = style.BorderWidth
	}
	borderColor := style.BorderColor
	if border > 0 {
		frame := box
		frame.Style = ShapeStyle{Stroke: &borderColor, StrokeWidth: border}
		if err := c.Rect(frame); err != nil {
			return err
		}
	}
	if err := paintEdges(c, cell.Edges, box, borderColor); err != nil {
		return err
	}

	if cell.Content == "" {
		return nil
	}
	w, err := t.wrappers.get(cell)
	if err != nil {
		return err
	}
	pad := style.CellPadding
	inner := box.Width - 2*pad
	if inner < minContentWidth {
		inner = minContentWidth
	}
	block, err := w.Wrap(cell.Content, WrapOptions{MaxWidth: inner, Hyphenate: style.Hyphenate, Align: cell.HAlign})
	if err != nil {
		return err
	}
	color := style.TextColor
	if cell.TextColor != nil {
		color = *cell.TextColor
	}
	return drawBlock(c, block, blockPlacement{
		X:         box.X + pad,
		Top:       box.Y + box.Height - pad,
		BoxHeight: box.Height - 2*pad,
		VAlign:    cell.VAlign,
		Font:      w.font,
		Size:      w.size,
		Color:     color,
	})
}

// background 的优先级：单元格颜色 > 表头背景 > 奇偶行背景。行号从 1 开始计奇偶。
func (t *Table) background(cell Cell, header bool, r int) *Color {
	if cell.Background != nil {
		return cell.Background
	}
	if header && t.style.HeaderBackground != nil {
		return t.style.HeaderBackground
	}
	if (r+1)%2 == 1 {
		return t.style.OddRowBackground
	}
	return t.style.EvenRowBackground
}

// paintEdges 按各自的线宽绘制四条边。
func paintEdges(c Canvas, e Edges, box Rect, color Color) error {
	left, right := box.X, box.X+box.Width
	bottom, top := box.Y, box.Y+box.Height
	edges := []struct {
		width          float64
		x1, y1, x2, y2 float64
	}{
		{e.Top, left, top, right, top},
		{e.Right, right, top, right, bottom},
		{e.Bottom, left, bottom, right, bottom},
		{e.Left, left, top, left, bottom},
	}
	for _, edge := range edges {
		if edge.width <= 0 {
			continue
		}
		if err := c.Line(Line{X1: edge.x1, Y1: edge.y1, X2: edge.x2, Y2: edge.y2, Color: color, Width: edge.width}); err != nil {
			return err
		}
	}
	return nil
}
