package compose

import (
	"fmt"
	"strings"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/layout"
)

// defaultStrokeWidth 是未声明 width / stroke-width 时的线宽。
const defaultStrokeWidth = 0.5

// handleShape 绘制图形，坐标均为区域所在画布的坐标（pt，y 轴向上）：
//
//	line x1 y1 x2 y2 [color] [width]，或 line x y length [dir h|v]
//	rect x y width height / square x y size
//	circle cx cy r
//	triangle x1 y1 x2 y2 x3 y3
//
// rect/square/circle/triangle 接受 stroke、stroke-width 与 fill。
func (b *builder) handleShape(cmd *dsl.Command, r *region) error {
	_, attrs := parseArgs(cmd.Args, false)
	nums, err := numbers(attrs, r)
	if err != nil {
		return err
	}

	switch cmd.Name {
	case "line":
		ln, err := b.lineShape(attrs, nums)
		if err != nil {
			return err
		}
		return r.canvas.Line(ln)
	}

	style, err := b.shapeStyle(attrs)
	if err != nil {
		return err
	}
	switch cmd.Name {
	case "rect":
		if nums["width"] <= 0 || nums["height"] <= 0 {
			return fmt.Errorf("rect 需要正的 width 与 height")
		}
		return r.canvas.Rect(layout.Rect{X: nums["x"], Y: nums["y"], Width: nums["width"], Height: nums["height"], Style: style})
	case "square":
		if nums["size"] <= 0 {
			return fmt.Errorf("square 需要正的 size")
		}
		return r.canvas.Rect(layout.Rect{X: nums["x"], Y: nums["y"], Width: nums["size"], Height: nums["size"], Style: style})
	case "circle":
		if nums["r"] <= 0 {
			return fmt.Errorf("circle 需要正的 r")
		}
		return r.canvas.Circle(layout.Circle{CX: nums["cx"], CY: nums["cy"], R: nums["r"], Style: style})
	case "triangle":
		pts := []layout.Point{
			{X: nums["x1"], Y: nums["y1"]},
			{X: nums["x2"], Y: nums["y2"]},
			{X: nums["x3"], Y: nums["y3"]},
		}
		return r.canvas.Polygon(layout.Polygon{Points: pts, Style: style})
	}
	return fmt.Errorf("未知图形 %s", cmd.Name)
}

var shapeKeys = []string{"x", "y", "x1", "y1", "x2", "y2", "x3", "y3", "cx", "cy", "r", "width", "height", "size", "length"}

// numbers 解析所有坐标与尺寸属性，x 方向百分比相对区域宽度，其余相对区域高度。
func numbers(attrs map[string]string, r *region) (map[string]float64, error) {
	out := make(map[string]float64, len(shapeKeys))
	for _, key := range shapeKeys {
		ref := r.top - r.bottom
		if strings.HasPrefix(key, "x") || key == "cx" || key == "width" {
			ref = r.width
		}
		v, _, err := length(attrs, key, ref)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func (b *builder) lineShape(attrs map[string]string, nums map[string]float64) (layout.Line, error) {
	ln := layout.Line{Color: layout.Black, Width: defaultStrokeWidth}
	if v, ok := attrs["color"]; ok {
		c, err := b.res.color(v)
		if err != nil {
			return ln, err
		}
		ln.Color = c
	}
	if w, ok, err := length(attrs, "width", 0); err != nil {
		return ln, err
	} else if ok {
		ln.Width = w
	}

	if _, full := attrs["x2"]; full {
		ln.X1, ln.Y1, ln.X2, ln.Y2 = nums["x1"], nums["y1"], nums["x2"], nums["y2"]
		return ln, nil
	}
	if nums["length"] <= 0 {
		return ln, fmt.Errorf("line 需要 x1/y1/x2/y2 或正的 length")
	}
	ln.X1, ln.Y1 = nums["x"], nums["y"]
	switch strings.ToLower(strings.TrimSpace(attrs["dir"])) {
	case "", "h", "hor", "horizontal":
		ln.X2, ln.Y2 = ln.X1+nums["length"], ln.Y1
	case "v", "ver", "vertical":
		// y 轴向上，竖线向下延伸
		ln.X2, ln.Y2 = ln.X1, ln.Y1-nums["length"]
	default:
		return ln, fmt.Errorf("未知的 line 方向 %q", attrs["dir"])
	}
	return ln, nil
}

func (b *builder) shapeStyle(attrs map[string]string) (layout.ShapeStyle, error) {
	var s layout.ShapeStyle
	var err error
	black := layout.Black
	if s.Stroke, err = b.res.optionalColor(attrs, "stroke", &black); err != nil {
		return s, err
	}
	if s.Fill, err = b.res.optionalColor(attrs, "fill", nil); err != nil {
		return s, err
	}
	if s.StrokeWidth, err = lengthOr(attrs, "stroke-width", 0, defaultStrokeWidth); err != nil {
		return s, err
	}
	return s, nil
}
