package layout

// CellPosition 是一个可绘制单元格相对表格左上角的矩形。
// X 向右为正，Top 是单元格顶部距表格顶部的向下距离。
type CellPosition struct {
	Anchor Anchor  `json:"anchor"`
	X      float64 `json:"x"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CellPositions 按行优先顺序为每个锚点单元格计算位置；占位格与空位不输出。
// 行高缺失（<= 0）的行使用 fallback。
func CellPositions(g *Grid, columns, heights []float64, fallback float64) []CellPosition {
	rowHeight := func(r int) float64 {
		if r < len(heights) && heights[r] > 0 {
			return heights[r]
		}
		return fallback
	}
	colX := make([]float64, g.Cols+1)
	for c := 0; c < g.Cols; c++ {
		colX[c+1] = colX[c] + columns[c]
	}
	rowTop := make([]float64, g.Rows+1)
	for r := 0; r < g.Rows; r++ {
		rowTop[r+1] = rowTop[r] + rowHeight(r)
	}

	out := make([]CellPosition, 0, len(g.Anchors))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if g.At(r, c).Kind != SlotAnchor {
				continue
			}
			a, _ := g.AnchorAt(r, c)
			out = append(out, CellPosition{
				Anchor: a,
				X:      colX[c],
				Top:    rowTop[r],
				Width:  colX[c+a.Colspan] - colX[c],
				Height: rowTop[r+a.Rowspan] - rowTop[r],
			})
		}
	}
	return out
}
