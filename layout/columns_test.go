package layout

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSolveColumnsExample(t *testing.T) {
	g, err := BuildGrid(exampleRows())
	if err != nil {
		t.Fatalf("构建网格失败: %v", err)
	}
	cols, err := SolveColumns(g, 300)
	if err != nil {
		t.Fatalf("计算列宽失败: %v", err)
	}
	want := []float64{100, 50, 150}
	for i := range want {
		if !near(cols[i], want[i]) {
			t.Fatalf("列宽期望 %v，实际 %v", want, cols)
		}
	}
}

func TestSolveColumnsCases(t *testing.T) {
	cases := []struct {
		name   string
		widths []float64 // 每列第一行单元格的显式宽度
		table  float64
		want   []float64
	}{
		{"全部自适应", []float64{0, 0, 0, 0}, 300, []float64{75, 75, 75, 75}},
		{"全部固定且相等", []float64{100, 200}, 300, []float64{100, 200}},
		{"全部固定但不足", []float64{100, 100}, 300, []float64{150, 150}},
		{"显式宽度超出", []float64{200, 0, 200}, 300, []float64{150, 0, 150}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			row := Row{}
			for _, w := range c.widths {
				cell := NewCell("x")
				cell.Width = w
				row.Cells = append(row.Cells, cell)
			}
			g, err := BuildGrid([]Row{row})
			if err != nil {
				t.Fatalf("构建网格失败: %v", err)
			}
			cols, err := SolveColumns(g, c.table)
			if err != nil {
				t.Fatalf("计算列宽失败: %v", err)
			}
			for i := range c.want {
				if !near(cols[i], c.want[i]) {
					t.Fatalf("列宽期望 %v，实际 %v", c.want, cols)
				}
			}
		})
	}
}

// TestSolveColumnsConservation 随机生成表格，列宽之和总等于表格宽度。
func TestSolveColumnsConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		var rows []Row
		for r := 0; r < 1+rng.Intn(4); r++ {
			var row Row
			for c := 0; c < 1+rng.Intn(5); c++ {
				cell := NewCell("x")
				cell.Colspan = 1 + rng.Intn(3)
				cell.Rowspan = 1 + rng.Intn(2)
				if rng.Intn(2) == 0 {
					cell.Width = float64(10 + rng.Intn(200))
				}
				row.Cells = append(row.Cells, cell)
			}
			rows = append(rows, row)
		}
		g, err := BuildGrid(rows)
		if err != nil {
			t.Fatalf("构建网格失败: %v", err)
		}
		width := float64(50 + rng.Intn(600))
		cols, err := SolveColumns(g, width)
		if err != nil {
			t.Fatalf("计算列宽失败: %v", err)
		}
		sum := 0.0
		for _, w := range cols {
			if w < -eps {
				t.Fatalf("列宽不应为负: %v", cols)
			}
			sum += w
		}
		if !near(sum, width) {
			t.Fatalf("列宽之和 %g 不等于表格宽度 %g: %v", sum, width, cols)
		}
	}
}

func TestSolveColumnsErrors(t *testing.T) {
	g, _ := BuildGrid([]Row{{}})
	if _, err := SolveColumns(g, 100); !errors.Is(err, ErrNoColumns) {
		t.Fatalf("无列时应返回 ErrNoColumns，实际 %v", err)
	}
	g, _ = BuildGrid([]Row{{Cells: cells("a")}})
	if _, err := SolveColumns(g, 0); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("宽度为 0 时应返回 ErrInvalidWidth，实际 %v", err)
	}
}
