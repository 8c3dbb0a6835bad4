package layout

import (
	"errors"
	"fmt"
	"testing"
)

// fixedRows 生成 n 行单列表格，每行声明高度 h；第 0 行可选为表头。
func fixedRows(n int, h float64, header bool) []Row {
	rows := make([]Row, n)
	for i := range rows {
		content := fmt.Sprintf("r%d", i)
		if i == 0 && header {
			content = "H"
		}
		rows[i] = Row{Cells: cells(content), Height: h, Header: i == 0 && header}
	}
	return rows
}

func layoutFixed(t *testing.T, rows []Row, frame PageFrame) (*pageHost, TableResult, error) {
	t.Helper()
	host := newPageHost(frame)
	res, err := LayoutTable(host.first(), host, TableSpec{
		Rows:  rows,
		Width: 100,
		Frame: frame,
		Style: testStyle(),
	}, &stubMeasurer{})
	return host, res, err
}

func TestPaginationAtomicRowsAndHeaderReplay(t *testing.T) {
	host, res, err := layoutFixed(t, fixedRows(10, 30, true), PageFrame{Top: 100, Bottom: 0})
	if err != nil {
		t.Fatalf("表格布局失败: %v", err)
	}
	if !res.OK || res.Rows != 10 || res.Pages != 5 {
		t.Fatalf("结果不符: %+v", res)
	}
	if len(host.res.Pages) != 5 {
		t.Fatalf("期望 5 页，实际 %d", len(host.res.Pages))
	}
	seen := map[string]int{}
	for _, page := range host.res.Pages {
		texts := page.Texts()
		if len(texts) == 0 || texts[0].Text != "H" {
			t.Fatalf("第 %d 页应以表头开始: %+v", page.Number, texts)
		}
		headers := 0
		for _, run := range texts {
			if run.Text == "H" {
				headers++
				continue
			}
			seen[run.Text]++
			// 整行不跨页：文本必须落在页面可用范围内
			if run.Y < 0 || run.Y+run.Height > 100 {
				t.Fatalf("文本越界: %+v", run)
			}
		}
		if headers != 1 {
			t.Fatalf("第 %d 页表头应恰好出现一次，实际 %d", page.Number, headers)
		}
	}
	for i := 1; i < 10; i++ {
		if seen[fmt.Sprintf("r%d", i)] != 1 {
			t.Fatalf("第 %d 行应恰好绘制一次: %v", i, seen)
		}
	}
	// 最后一页：表头 + r9，100 - 30 - 30
	if !near(res.Cursor, 40) {
		t.Fatalf("最终游标期望 40，实际 %g", res.Cursor)
	}
}

func TestPaginationBreakBefore(t *testing.T) {
	rows := fixedRows(6, 30, true)
	rows[0].BreakBefore = true // 页面第一行，忽略
	rows[3].BreakBefore = true
	host, res, err := layoutFixed(t, rows, PageFrame{Top: 1000, Bottom: 0})
	if err != nil {
		t.Fatalf("表格布局失败: %v", err)
	}
	if res.Pages != 2 || len(host.res.Pages) != 2 {
		t.Fatalf("强制分页后应为 2 页，实际 %+v", res)
	}
	second := host.res.Pages[1].Texts()
	if second[0].Text != "H" || second[1].Text != "r3" {
		t.Fatalf("第二页应为表头后接 r3: %+v", second)
	}
}

func TestPaginationNoProgress(t *testing.T) {
	rows := fixedRows(2, 30, true)
	rows[1].Height = 500
	host, res, err := layoutFixed(t, rows, PageFrame{Top: 100, Bottom: 0})
	if !errors.Is(err, ErrNoProgress) {
		t.Fatalf("单行高于页面时应返回 ErrNoProgress，实际 %v", err)
	}
	var cerr *CellError
	if !errors.As(err, &cerr) || cerr.Row != 1 {
		t.Fatalf("错误应指出第 1 行，实际 %v", err)
	}
	if res.OK || len(host.res.Pages) != 2 {
		t.Fatalf("应在第二页停止，实际 pages=%d res=%+v", len(host.res.Pages), res)
	}
}

func TestPaginationFirstPageMayBeEmpty(t *testing.T) {
	host := newPageHost(PageFrame{Top: 100, Bottom: 0})
	// 首页起点已接近底部，一行都放不下
	res, err := LayoutTable(host.first(), host, TableSpec{
		Rows:  fixedRows(3, 30, false),
		Width: 100,
		Frame: PageFrame{Top: 20, Bottom: 0},
		Style: testStyle(),
	}, &stubMeasurer{})
	if err != nil {
		t.Fatalf("首页为空不应失败: %v", err)
	}
	if res.Rows != 3 || res.Pages != 2 {
		t.Fatalf("结果不符: %+v", res)
	}
	if len(host.first().Ops) != 0 {
		t.Fatalf("首页不应绘制任何内容")
	}
}

func TestPaginatorStates(t *testing.T) {
	table, err := PrepareTable(fixedRows(4, 30, true), 100, testStyle(), &stubMeasurer{})
	if err != nil {
		t.Fatalf("准备表格失败: %v", err)
	}
	p := table.Paginate(10)
	if p.State() != StateFirstPage {
		t.Fatalf("初始状态应为 first-page，实际 %v", p.State())
	}
	rep, err := p.Step(&Page{}, PageFrame{Top: 70, Bottom: 0})
	if err != nil {
		t.Fatalf("首页失败: %v", err)
	}
	if len(rep.Rows) != 2 || p.State() != StateContinuation {
		t.Fatalf("首页应放 2 行并进入续页状态: %+v %v", rep, p.State())
	}
	rep, err = p.Step(&Page{}, PageFrame{Top: 100, Bottom: 0})
	if err != nil {
		t.Fatalf("续页失败: %v", err)
	}
	if len(rep.Replayed) != 1 || rep.Replayed[0] != 0 || len(rep.Rows) != 2 {
		t.Fatalf("续页应重绘表头并放置剩余 2 行: %+v", rep)
	}
	if !p.Done() || p.Placed() != 4 || p.Pages() != 2 {
		t.Fatalf("应完成: state=%v placed=%d pages=%d", p.State(), p.Placed(), p.Pages())
	}
}

func TestPaginationNoUsableHeight(t *testing.T) {
	// 首页起点已低于底部限制：直接换页
	host := newPageHost(PageFrame{Top: 100, Bottom: 0})
	res, err := LayoutTable(host.first(), host, TableSpec{
		Rows:  fixedRows(1, 30, false),
		Width: 100,
		Frame: PageFrame{Top: 15, Bottom: 20},
		Style: testStyle(),
	}, &stubMeasurer{})
	if err != nil {
		t.Fatalf("首页没有剩余空间时应换页而不是失败: %v", err)
	}
	if !res.OK || res.Pages != 2 || res.Rows != 1 || !near(res.Cursor, 70) {
		t.Fatalf("结果不符: %+v", res)
	}
	if len(host.res.Pages) != 2 || len(host.first().Ops) != 0 || len(host.res.Pages[1].Ops) == 0 {
		t.Fatalf("该行应绘制在第二页")
	}

	// 续页本身没有可用高度
	host = newPageHost(PageFrame{Top: 10, Bottom: 10})
	res, err = LayoutTable(host.first(), host, TableSpec{
		Rows:  fixedRows(5, 30, false),
		Width: 100,
		Frame: PageFrame{Top: 100, Bottom: 0},
		Style: testStyle(),
	}, &stubMeasurer{})
	if !errors.Is(err, ErrNoUsableHeight) {
		t.Fatalf("续页可用高度为 0 时应返回 ErrNoUsableHeight，实际 %v", err)
	}
	if res.OK || res.Rows != 3 {
		t.Fatalf("首页应已放置 3 行: %+v", res)
	}
}

func TestPaginatorFirstPageFull(t *testing.T) {
	table, err := PrepareTable(fixedRows(2, 30, false), 100, testStyle(), &stubMeasurer{})
	if err != nil {
		t.Fatalf("准备表格失败: %v", err)
	}
	p := table.Paginate(0)
	rep, err := p.Step(&Page{}, PageFrame{Top: 20, Bottom: 20})
	if err != nil {
		t.Fatalf("首页已满不应报错: %v", err)
	}
	if len(rep.Rows) != 0 || !near(rep.Cursor, 20) || p.State() != StateContinuation || p.Pages() != 1 {
		t.Fatalf("首页已满后应进入续页状态: rep=%+v state=%v pages=%d", rep, p.State(), p.Pages())
	}
}

// brokenCanvas 对所有矩形报错。
type brokenCanvas struct{ Page }

var errBrokenCanvas = errors.New("canvas broken")

func (b *brokenCanvas) Rect(Rect) error { return errBrokenCanvas }

func TestLayoutTableKeepsStartCursorOnEarlyFailure(t *testing.T) {
	res, err := LayoutTable(&brokenCanvas{}, nil, TableSpec{
		Rows:  fixedRows(2, 30, false),
		Width: 100,
		Frame: PageFrame{Top: 300, Bottom: 0},
		Style: testStyle(),
	}, &stubMeasurer{})
	if !errors.Is(err, errBrokenCanvas) {
		t.Fatalf("应返回画布错误，实际 %v", err)
	}
	if res.OK || res.Pages != 0 || !near(res.Cursor, 300) {
		t.Fatalf("首页未完成时游标应保持起始位置: %+v", res)
	}
}

func TestPaginationRowspanClippedAtPageBreak(t *testing.T) {
	tall := NewCell("T")
	tall.Rowspan = 2
	rows := []Row{
		{Cells: []Cell{tall, NewCell("b")}, Height: 30},
		{Cells: cells("c"), Height: 30},
	}
	host, _, err := layoutFixed(t, rows, PageFrame{Top: 50, Bottom: 0})
	if err != nil {
		t.Fatalf("表格布局失败: %v", err)
	}
	first := host.first().Ops[0]
	if first.Kind != OpRect || !near(first.Rect.Height, 30) || !near(first.Rect.Y, 20) {
		t.Fatalf("跨页的纵向合并单元格应裁剪到本页: %+v", first.Rect)
	}
}

func TestLayoutTableWithoutHost(t *testing.T) {
	page := &Page{}
	_, err := LayoutTable(page, nil, TableSpec{
		Rows:  fixedRows(5, 30, false),
		Width: 100,
		Frame: PageFrame{Top: 60, Bottom: 0},
		Style: testStyle(),
	}, &stubMeasurer{})
	var cerr *CellError
	if !errors.As(err, &cerr) || cerr.Row != 2 {
		t.Fatalf("需要换页但没有 host 时应报错并指出下一行，实际 %v", err)
	}
}
