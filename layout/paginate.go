package layout

import (
	"fmt"

	"go.uber.org/zap"
)

// State 是分页状态机的状态。
type State int

const (
	StateFirstPage State = iota
	StateContinuation
	StateDone
)

func (s State) String() string {
	switch s {
	case StateFirstPage:
		return "first-page"
	case StateContinuation:
		return "continuation"
	default:
		return "done"
	}
}

// PageFrame 是一页中表格可用的纵向范围：从 Top 向下排到 Bottom 为止。
type PageFrame struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// PageHost 由宿主实现：开始新的一页并返回其画布与可用范围。
type PageHost interface {
	NextPage() (Canvas, PageFrame, error)
}

// PageReport 描述一次 Step 在一页上绘制的内容。
type PageReport struct {
	// Rows 是按顺序放置的行（不含重绘的表头）。
	Rows []int `json:"rows"`
	// Replayed 是续页顶部重绘的表头行。
	Replayed []int   `json:"replayed,omitempty"`
	Cursor   float64 `json:"cursor"`
}

// Paginator 以整行为单位把表格分配到各页。每次 Step 处理一页，
// 未完成时由调用方开始新的一页后再次调用 Step。
type Paginator struct {
	t      *Table
	x      float64
	state  State
	next   int
	pages  int
	placed int
	cursor float64
}

// Paginate 创建从 x 处开始绘制的分页器。
func (t *Table) Paginate(x float64) *Paginator {
	p := &Paginator{t: t, x: x}
	if t.Len() == 0 {
		p.state = StateDone
	}
	return p
}

func (p *Paginator) State() State { return p.state }

func (p *Paginator) Done() bool { return p.state == StateDone }

// Cursor 返回最近一页绘制结束时的纵向位置。
func (p *Paginator) Cursor() float64 { return p.cursor }

func (p *Paginator) Pages() int { return p.pages }

// Placed 返回已放置的行数（不含重绘的表头）。
func (p *Paginator) Placed() int { return p.placed }

func (p *Paginator) NextRow() int { return p.next }

// Step 在 c 上从 frame.Top 开始绘制尽可能多的整行。
// 续页先按原顺序重绘已放置过的表头行；续页一行都放不下时返回 ErrNoProgress，
// 续页没有可用高度时返回 ErrNoUsableHeight。首页放不下任何行时只换页，不报错。
func (p *Paginator) Step(c Canvas, frame PageFrame) (PageReport, error) {
	if p.state == StateDone {
		return PageReport{Cursor: p.cursor}, nil
	}
	if frame.Top <= frame.Bottom {
		if p.state == StateFirstPage {
			// 起点已在底部之下：本页视为已满
			p.pages++
			p.cursor = frame.Top
			p.state = StateContinuation
			return PageReport{Cursor: frame.Top}, nil
		}
		p.state = StateDone
		return PageReport{Cursor: frame.Top}, &CellError{Op: "分页", Row: p.next, Col: -1, Err: ErrNoUsableHeight}
	}

	t := p.t
	rep := PageReport{}
	cursor := frame.Top

	if p.state == StateContinuation {
		for r := 0; r < p.next; r++ {
			if !t.rows[r].Header {
				continue
			}
			h := t.RowHeight(r)
			if cursor-h < frame.Bottom {
				return p.fail(rep, cursor)
			}
			visible := func(a Anchor) float64 { return p.replayHeight(a) }
			if err := t.drawRow(c, r, p.x, cursor, visible); err != nil {
				return rep, err
			}
			cursor -= h
			rep.Replayed = append(rep.Replayed, r)
		}
	}

	for p.next < t.Len() {
		r := p.next
		h := t.RowHeight(r)
		if cursor-h < frame.Bottom {
			break
		}
		if t.rows[r].BreakBefore && len(rep.Rows) > 0 {
			break
		}
		top := cursor
		visible := func(a Anchor) float64 { return p.flowHeight(a, top, frame.Bottom) }
		if err := t.drawRow(c, r, p.x, top, visible); err != nil {
			return rep, err
		}
		cursor -= h
		rep.Rows = append(rep.Rows, r)
		p.next++
		p.placed++
	}

	p.pages++
	p.cursor = cursor
	rep.Cursor = cursor

	switch {
	case p.next >= t.Len():
		p.state = StateDone
	case p.state == StateContinuation && len(rep.Rows) == 0:
		return p.fail(rep, cursor)
	default:
		p.state = StateContinuation
	}
	return rep, nil
}

func (p *Paginator) fail(rep PageReport, cursor float64) (PageReport, error) {
	p.state = StateDone
	p.cursor = cursor
	rep.Cursor = cursor
	p.t.log.Error("表格无法继续分页",
		zap.Int("row", p.next), zap.Float64("rowHeight", p.t.RowHeight(p.next)), zap.Int("pages", p.pages))
	return rep, &CellError{Op: "分页", Row: p.next, Col: -1, Err: ErrNoProgress}
}

// flowHeight 返回纵向合并单元格在本页可见的高度：只累计之后同样会落在本页的行。
func (p *Paginator) flowHeight(a Anchor, top, bottom float64) float64 {
	t := p.t
	cursor := top
	h := 0.0
	for k := a.Row; k < a.Row+a.Rowspan && k < t.Len(); k++ {
		rh := t.RowHeight(k)
		if k > a.Row && (cursor-rh < bottom || t.rows[k].BreakBefore) {
			break
		}
		h += rh
		cursor -= rh
	}
	return h
}

// replayHeight 只累计与锚点行连续、同样被重绘的表头行。
func (p *Paginator) replayHeight(a Anchor) float64 {
	t := p.t
	h := 0.0
	for k := a.Row; k < a.Row+a.Rowspan && k < p.next; k++ {
		if k > a.Row && !t.rows[k].Header {
			break
		}
		h += t.RowHeight(k)
	}
	return h
}

// TableSpec 描述一次表格布局调用。
type TableSpec struct {
	Rows  []Row
	Width float64
	X     float64
	// Frame.Top 是首页的起始位置，Frame.Bottom 是首页的底部限制。
	Frame PageFrame
	Style TableStyle
}

// TableResult 是表格布局的结果。
type TableResult struct {
	// Cursor 是最后一页上表格底部的位置。
	Cursor float64 `json:"cursor"`
	Pages  int     `json:"pages"`
	Rows   int     `json:"rows"`
	OK     bool    `json:"ok"`
}

// LayoutTable 布局并绘制整张表格，需要换页时通过 host 请求新的一页。
func LayoutTable(c Canvas, host PageHost, spec TableSpec, m TextMeasurer, opts ...Option) (TableResult, error) {
	o := newOptions(opts)
	res := TableResult{Cursor: spec.Frame.Top}
	if len(spec.Rows) == 0 {
		res.OK = true
		return res, nil
	}
	t, err := PrepareTable(spec.Rows, spec.Width, spec.Style, m, opts...)
	if err != nil {
		return res, err
	}
	p := t.Paginate(spec.X)
	canvas, frame := c, spec.Frame
	for {
		_, err := p.Step(canvas, frame)
		res.Cursor, res.Pages, res.Rows = p.Cursor(), p.Pages(), p.Placed()
		if err != nil {
			if p.Pages() == 0 {
				res.Cursor = spec.Frame.Top
			}
			return res, err
		}
		if p.Done() {
			break
		}
		if host == nil {
			return res, &CellError{Op: "分页", Row: p.NextRow(), Col: -1, Err: fmt.Errorf("需要换页但未提供 PageHost")}
		}
		canvas, frame, err = host.NextPage()
		if err != nil {
			return res, fmt.Errorf("换页失败: %w", err)
		}
		o.log.Debug("表格换页", zap.Int("nextRow", p.NextRow()), zap.Float64("top", frame.Top))
	}
	res.OK = true
	return res, nil
}
