package layout

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// exampleRows 是三列两行的示例表格：第二行第一个单元格跨两列。
func exampleRows() []Row {
	head := cells("Name", "Qty", "Notes")
	head[0].Width = 100
	head[1].Width = 50
	span := NewCell("Subtotal")
	span.Colspan = 2
	return []Row{
		{Cells: head, Header: true},
		{Cells: []Cell{span, NewCell("42")}},
	}
}

func TestBuildGridSpans(t *testing.T) {
	g, err := BuildGrid(exampleRows())
	if err != nil {
		t.Fatalf("构建网格失败: %v", err)
	}
	if g.Rows != 2 || g.Cols != 3 {
		t.Fatalf("网格尺寸期望 2x3，实际 %dx%d", g.Rows, g.Cols)
	}
	if s := g.At(1, 1); s.Kind != SlotSpanned || s.Row != 1 || s.Col != 0 {
		t.Fatalf("(1,1) 应为指向 (1,0) 的占位格，实际 %+v", s)
	}
	if s := g.At(1, 2); s.Kind != SlotAnchor {
		t.Fatalf("(1,2) 应为锚点，实际 %+v", s)
	}
	if s := g.At(0, 2); !s.Header {
		t.Fatalf("表头行的格子应带表头标记")
	}
	a, ok := g.AnchorAt(1, 1)
	if !ok || a.Colspan != 2 || g.Cell(a).Content != "Subtotal" {
		t.Fatalf("占位格应能查到其锚点，实际 %+v", a)
	}
}

func TestBuildGridRowspanSkipsOccupied(t *testing.T) {
	tall := NewCell("A")
	tall.Rowspan = 2
	rows := []Row{
		{Cells: []Cell{tall, NewCell("B")}},
		{Cells: cells("C")},
	}
	g, err := BuildGrid(rows)
	if err != nil {
		t.Fatalf("构建网格失败: %v", err)
	}
	if s := g.At(1, 0); s.Kind != SlotSpanned || s.Row != 0 || s.Col != 0 {
		t.Fatalf("(1,0) 应被 A 占用，实际 %+v", s)
	}
	a, ok := g.AnchorAt(1, 1)
	if !ok || g.Cell(a).Content != "C" || a.Row != 1 || a.Col != 1 {
		t.Fatalf("C 应跳到第 1 列，实际 %+v", a)
	}
}

func TestBuildGridClipsAndDrops(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tall := NewCell("A")
	tall.Rowspan = 5
	wide := NewCell("D")
	wide.Colspan = 3
	rows := []Row{
		{Cells: []Cell{tall, NewCell("B"), NewCell("C")}},
		{Cells: []Cell{wide, NewCell("E")}},
	}
	g, err := BuildGrid(rows, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("构建网格失败: %v", err)
	}
	// 第一行 colspan 和为 3，第二行为 4，共 4 列
	if g.Cols != 4 {
		t.Fatalf("列数期望 4，实际 %d", g.Cols)
	}
	a, _ := g.AnchorAt(0, 0)
	if a.Rowspan != 2 {
		t.Fatalf("rowspan 应被裁剪为 2，实际 %d", a.Rowspan)
	}
	d, ok := g.AnchorAt(1, 1)
	if !ok || g.Cell(d).Content != "D" || d.Colspan != 3 {
		t.Fatalf("D 应从第 1 列开始跨 3 列，实际 %+v", d)
	}
	// E 在第二行已无空位
	for _, an := range g.Anchors {
		if g.Cell(an).Content == "E" {
			t.Fatalf("E 应被丢弃")
		}
	}
	if logs.FilterMessage("单元格超出网格，已丢弃").Len() != 1 {
		t.Fatalf("丢弃单元格应记录一条警告")
	}
	if logs.FilterMessage("单元格合并范围超出网格，已裁剪").Len() == 0 {
		t.Fatalf("裁剪合并范围应记录警告")
	}
}

func TestBuildGridColspanStopsAtOccupiedSlot(t *testing.T) {
	tall := NewCell("T")
	tall.Rowspan = 2
	wide := NewCell("W")
	wide.Colspan = 3
	rows := []Row{
		{Cells: []Cell{NewCell("A"), NewCell("B"), tall}},
		{Cells: []Cell{wide}},
	}
	g, err := BuildGrid(rows)
	if err != nil {
		t.Fatalf("构建网格失败: %v", err)
	}
	w, ok := g.AnchorAt(1, 0)
	if !ok || w.Colspan != 2 {
		t.Fatalf("W 不应覆盖 T 的纵向合并区域，实际 %+v", w)
	}
	if s := g.At(1, 2); s.Row != 0 || s.Col != 2 {
		t.Fatalf("(1,2) 仍属于 T，实际 %+v", s)
	}
}

func TestBuildGridShortRowLeavesEmptySlots(t *testing.T) {
	rows := []Row{
		{Cells: cells("a", "b", "c")},
		{Cells: cells("d")},
		{},
	}
	g, err := BuildGrid(rows)
	if err != nil {
		t.Fatalf("构建网格失败: %v", err)
	}
	if g.At(1, 1).Kind != SlotEmpty || g.At(2, 0).Kind != SlotEmpty {
		t.Fatalf("不足的行应留下空位")
	}
	if _, ok := g.AnchorAt(1, 2); ok {
		t.Fatalf("空位不应有锚点")
	}
	if len(g.Anchors) != 4 {
		t.Fatalf("锚点数期望 4，实际 %d", len(g.Anchors))
	}
}
