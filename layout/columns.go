package layout

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// SolveColumns 把表格宽度分配到各列：显式宽度固定其起始列，其余列平分剩余宽度。
// 跨多列的单元格只设置起始列的宽度。
func SolveColumns(g *Grid, tableWidth float64, opts ...Option) ([]float64, error) {
	o := newOptions(opts)
	if g == nil || g.Cols == 0 {
		return nil, ErrNoColumns
	}
	if tableWidth <= 0 || math.IsNaN(tableWidth) || math.IsInf(tableWidth, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidWidth, tableWidth)
	}

	columns := make([]float64, g.Cols)
	fixed := make([]bool, g.Cols)
	flex := tableWidth / float64(g.Cols)
	for i := range columns {
		columns[i] = flex
	}
	for _, a := range g.Anchors {
		if w := g.Cell(a).Width; w > 0 {
			columns[a.Col] = w
			fixed[a.Col] = true
		}
	}

	sum := 0.0
	flexible := 0
	for i, w := range columns {
		sum += w
		if !fixed[i] {
			flexible++
		}
	}
	if flexible > 0 {
		share := (tableWidth - sum) / float64(flexible)
		for i := range columns {
			if !fixed[i] {
				columns[i] += share
			}
		}
	}

	if needsRescale(columns, tableWidth) {
		rescale(columns, fixed, tableWidth)
		o.log.Debug("显式列宽与表格宽度不一致，已按比例缩放",
			zap.Float64("tableWidth", tableWidth), zap.Float64s("columns", columns))
	}
	return columns, nil
}

func needsRescale(columns []float64, total float64) bool {
	sum := 0.0
	for _, w := range columns {
		if w < 0 {
			return true
		}
		sum += w
	}
	return math.Abs(sum-total) > 1e-9*math.Max(1, total)
}

// rescale 在显式宽度之和超出（或全部列都固定但不足）表格宽度时，
// 把不固定列置 0，并按比例缩放固定列使总和等于 total。
func rescale(columns []float64, fixed []bool, total float64) {
	sum := 0.0
	for i := range columns {
		if !fixed[i] {
			columns[i] = 0
			continue
		}
		sum += columns[i]
	}
	if sum <= 0 {
		for i := range columns {
			columns[i] = total / float64(len(columns))
		}
		return
	}
	k := total / sum
	for i := range columns {
		columns[i] *= k
	}
}

// spanWidth 返回从 col 开始跨 span 列的总宽度。
func spanWidth(columns []float64, col, span int) float64 {
	w := 0.0
	for i := col; i < col+span && i < len(columns); i++ {
		w += columns[i]
	}
	return w
}
