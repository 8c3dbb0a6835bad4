package compose

import (
	"fmt"
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/layout"
)

// handleText 排版一段自由文本。带 y 时按绝对位置绘制（y 为文本块顶部），否则放在区域游标处并在放不下时换页。
func (b *builder) handleText(cmd *dsl.Command, r *region) error {
	if cmd.Block == nil {
		return fmt.Errorf("text 语句缺少文本块")
	}
	styleName, attrs := parseArgs(cmd.Args, true)
	attrs = mergeStyleAttributes(styleName, attrs, b.res.Styles)
	if _, ok := attrs["font"]; !ok {
		if _, isFont := b.res.Fonts[styleName]; isFont {
			attrs["font"] = styleName
		}
	}
	content := extractText(cmd.Block)
	if content == "" {
		return fmt.Errorf("text 语句缺少文本内容")
	}

	p, err := b.paragraph(attrs, r)
	if err != nil {
		return err
	}
	if p.Hidden {
		// 只测量，不占用版面
		p.Text = norm.NFC.String(b.expand(content, r.page))
		_, err := layout.WrapParagraph(p, b.measurer)
		return err
	}
	_, absolute := attrs["y"]
	if !absolute {
		p.Text = norm.NFC.String(b.expand(content, r.page))
		block, err := layout.WrapParagraph(p, b.measurer)
		if err != nil {
			return err
		}
		if err := r.advance(math.Max(block.Height, p.MaxHeight)); err != nil {
			return err
		}
		p.Top = r.cursor
	}
	// 换页后页码可能变化，按最终所在页展开
	p.Text = norm.NFC.String(b.expand(content, r.page))
	dim, err := layout.DrawParagraph(r.canvas, p, b.measurer)
	if err != nil {
		return err
	}
	if !absolute {
		r.cursor -= math.Max(dim.Height, p.MaxHeight) + b.set.BlockSpacing
	}
	return nil
}

// paragraph 把属性转换为 layout.Paragraph，Top 在绝对定位时取 y，否则由调用方设置。
func (b *builder) paragraph(attrs map[string]string, r *region) (layout.Paragraph, error) {
	p := layout.Paragraph{
		X:         r.x,
		Top:       r.cursor,
		Font:      b.res.font(attrs["font"], b.set.Font),
		Size:      b.set.FontSize,
		Color:     layout.Black,
		Hyphenate: hyphenate(attrs, b.set.Hyphenate),
		Hidden:    flag(attrs, "hidden"),
	}
	var err error
	if p.X, err = lengthOr(attrs, "x", r.width, r.x); err != nil {
		return p, err
	}
	if p.Top, err = lengthOr(attrs, "y", r.top, r.cursor); err != nil {
		return p, err
	}
	if p.Size, err = lengthOr(attrs, "size", 0, p.Size); err != nil {
		return p, err
	}
	if p.Size <= 0 {
		return p, fmt.Errorf("字号必须大于 0")
	}
	if p.MaxWidth, err = lengthOr(attrs, "width", r.width, r.x+r.width-p.X); err != nil {
		return p, err
	}
	if p.MaxHeight, err = lengthOr(attrs, "height", r.top-r.bottom, 0); err != nil {
		return p, err
	}
	if v, ok := attrs["color"]; ok {
		if p.Color, err = b.res.color(v); err != nil {
			return p, err
		}
	}
	if p.HAlign, err = layout.ParseHAlign(attrs["align"]); err != nil {
		return p, err
	}
	if p.VAlign, err = layout.ParseVAlign(attrs["valign"]); err != nil {
		return p, err
	}
	p.LineSpacing = b.set.LineSpacing
	if v, ok := attrs["spacing"]; ok {
		spec, err := layout.ParseSpacing(v)
		if err != nil {
			return p, err
		}
		p.LineSpacing = spec.Resolve(p.Size)
	}
	return p, nil
}

// handleImage 放置图片：image <资源名> [x] [y] [width] [height] [fit] [angle]，或用 src 直接给出路径。
// 不带 y 时 y 由区域游标决定，图片顶部对齐游标。
func (b *builder) handleImage(cmd *dsl.Command, r *region) error {
	name, attrs := parseArgs(cmd.Args, true)
	attrs = mergeStyleAttributes(name, attrs, b.res.Styles)
	if v := attrs["image"]; v != "" {
		name = v
	}

	box := layout.ImageBox{Src: attrs["src"], Fit: flag(attrs, "fit")}
	if res, ok := b.res.Images[name]; ok {
		box.Src, box.Width, box.Height = res.Src, res.Width, res.Height
	}
	if box.Src == "" {
		return fmt.Errorf("图片 %q 未定义且缺少 src", name)
	}

	var err error
	if box.Width, err = lengthOr(attrs, "width", r.width, box.Width); err != nil {
		return err
	}
	if box.Height, err = lengthOr(attrs, "height", r.top-r.bottom, box.Height); err != nil {
		return err
	}
	switch {
	case box.Width <= 0 && box.Height <= 0:
		return fmt.Errorf("图片 %s 需要 width 或 height", box.Src)
	case box.Width <= 0:
		box.Width, box.Fit = box.Height, true
	case box.Height <= 0:
		box.Height, box.Fit = box.Width, true
	}
	if box.Angle, err = lengthOr(attrs, "angle", 0, 0); err != nil {
		return err
	}
	if box.X, err = lengthOr(attrs, "x", r.width, r.x); err != nil {
		return err
	}

	y, absolute, err := length(attrs, "y", r.top)
	if err != nil {
		return err
	}
	if absolute {
		box.Y = y
		return r.canvas.Image(box)
	}
	if err := r.advance(box.Height); err != nil {
		return err
	}
	box.Y = r.cursor - box.Height
	if err := r.canvas.Image(box); err != nil {
		return err
	}
	r.cursor = box.Y - b.set.BlockSpacing
	return nil
}
