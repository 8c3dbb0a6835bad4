package layout

// 页面坐标系：原点位于页面左下角，y 轴向上，单位 pt。

// Point 是页面坐标中的一个点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ShapeStyle 描述图形的填充与描边，nil 表示不填充/不描边。
type ShapeStyle struct {
	Fill        *Color  `json:"fill,omitempty"`
	Stroke      *Color  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Rect 是一个矩形，(X, Y) 为左下角。
type Rect struct {
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Style  ShapeStyle `json:"style"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Polygon 是闭合多边形（例如三角形）。
type Polygon struct {
	Points []Point     `json:"points"`
	Style  ShapeStyle `json:"style"`
}

// Circle 表示一个圆。
type Circle struct {
	CX    float64    `json:"cx"`
	CY    float64    `json:"cy"`
	R     float64    `json:"r"`
	Style ShapeStyle `json:"style"`
}

// TextRun 是一行已经排好位置的文本，Y 为行框底部（基线位置由渲染器根据字体度量确定）。
type TextRun struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
	Font   FontRef `json:"font,omitempty"`
	Size   float64 `json:"size"`
	Color  Color   `json:"color"`
}

// ImageBox 把图片放入一个包围盒，(X, Y) 为左下角。
type ImageBox struct {
	Src    string  `json:"src"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Fit 为 true 时按比例缩放到包围盒内。
	Fit bool `json:"fit,omitempty"`
	// Angle 为旋转角度（度，逆时针）。
	Angle float64 `json:"angle,omitempty"`
}

// Canvas 是排版核心唯一的绘制出口。页面与模板（页眉/页脚）使用同一组操作。
type Canvas interface {
	Rect(r Rect) error
	Line(l Line) error
	Polygon(p Polygon) error
	Circle(c Circle) error
	Text(t TextRun) error
	Image(img ImageBox) error
}

// Offset 返回一个把所有坐标平移 (dx, dy) 后转发给 c 的 Canvas。
func Offset(c Canvas, dx, dy float64) Canvas {
	if dx == 0 && dy == 0 {
		return c
	}
	return offsetCanvas{inner: c, dx: dx, dy: dy}
}

type offsetCanvas struct {
	inner  Canvas
	dx, dy float64
}

func (o offsetCanvas) Rect(r Rect) error {
	r.X += o.dx
	r.Y += o.dy
	return o.inner.Rect(r)
}

func (o offsetCanvas) Line(l Line) error {
	l.X1 += o.dx
	l.X2 += o.dx
	l.Y1 += o.dy
	l.Y2 += o.dy
	return o.inner.Line(l)
}

func (o offsetCanvas) Polygon(p Polygon) error {
	pts := make([]Point, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = Point{X: pt.X + o.dx, Y: pt.Y + o.dy}
	}
	p.Points = pts
	return o.inner.Polygon(p)
}

func (o offsetCanvas) Circle(c Circle) error {
	c.CX += o.dx
	c.CY += o.dy
	return o.inner.Circle(c)
}

func (o offsetCanvas) Text(t TextRun) error {
	t.X += o.dx
	t.Y += o.dy
	return o.inner.Text(t)
}

func (o offsetCanvas) Image(img ImageBox) error {
	img.X += o.dx
	img.Y += o.dy
	return o.inner.Image(img)
}
