package layout

import "fmt"

// 该文件定义布局结果（显示列表），供渲染与调试 JSON 共用。

// Result 保存布局后的页面与文档元信息。
type Result struct {
	Pages []*Page      `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// AddPage 追加一页并返回它，页码从 1 开始。
func (r *Result) AddPage(width, height float64) *Page {
	p := &Page{Number: len(r.Pages) + 1, Width: width, Height: height}
	r.Pages = append(r.Pages, p)
	return p
}

// OpKind 是显示列表中的绘制操作类型。
type OpKind string

const (
	OpRect    OpKind = "rect"
	OpLine    OpKind = "line"
	OpPolygon OpKind = "polygon"
	OpCircle  OpKind = "circle"
	OpText    OpKind = "text"
	OpImage   OpKind = "image"
)

// Op 是一条按顺序记录的绘制操作，只有与 Kind 对应的字段非空。
type Op struct {
	Kind    OpKind    `json:"kind"`
	Rect    *Rect     `json:"rect,omitempty"`
	Line    *Line     `json:"line,omitempty"`
	Polygon *Polygon  `json:"polygon,omitempty"`
	Circle  *Circle   `json:"circle,omitempty"`
	Text    *TextRun  `json:"text,omitempty"`
	Image   *ImageBox `json:"image,omitempty"`
}

// Page 记录页面尺寸（pt）与按绘制顺序排列的操作。Page 本身实现 Canvas。
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Ops    []Op    `json:"ops"`
}

var _ Canvas = (*Page)(nil)

func (p *Page) Rect(r Rect) error {
	p.Ops = append(p.Ops, Op{Kind: OpRect, Rect: &r})
	return nil
}

func (p *Page) Line(l Line) error {
	p.Ops = append(p.Ops, Op{Kind: OpLine, Line: &l})
	return nil
}

func (p *Page) Polygon(pg Polygon) error {
	pg.Points = append([]Point(nil), pg.Points...)
	p.Ops = append(p.Ops, Op{Kind: OpPolygon, Polygon: &pg})
	return nil
}

func (p *Page) Circle(c Circle) error {
	p.Ops = append(p.Ops, Op{Kind: OpCircle, Circle: &c})
	return nil
}

func (p *Page) Text(t TextRun) error {
	p.Ops = append(p.Ops, Op{Kind: OpText, Text: &t})
	return nil
}

func (p *Page) Image(img ImageBox) error {
	p.Ops = append(p.Ops, Op{Kind: OpImage, Image: &img})
	return nil
}

// Texts 返回页面上所有文本（按绘制顺序）。
func (p *Page) Texts() []TextRun {
	var out []TextRun
	for _, op := range p.Ops {
		if op.Kind == OpText {
			out = append(out, *op.Text)
		}
	}
	return out
}

// Replay 按记录顺序把所有操作重放到 c 上。
func (p *Page) Replay(c Canvas) error {
	for i, op := range p.Ops {
		var err error
		switch op.Kind {
		case OpRect:
			err = c.Rect(*op.Rect)
		case OpLine:
			err = c.Line(*op.Line)
		case OpPolygon:
			err = c.Polygon(*op.Polygon)
		case OpCircle:
			err = c.Circle(*op.Circle)
		case OpText:
			err = c.Text(*op.Text)
		case OpImage:
			err = c.Image(*op.Image)
		default:
			err = fmt.Errorf("未知的绘制操作 %q", op.Kind)
		}
		if err != nil {
			return fmt.Errorf("第 %d 页第 %d 个操作: %w", p.Number, i, err)
		}
	}
	return nil
}
