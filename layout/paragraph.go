package layout

import "fmt"

// Paragraph 是一段自由文本（表格之外）。
type Paragraph struct {
	Text string
	// X 为左边界，Top 为文本块顶部。
	X   float64
	Top float64
	// MaxWidth <= 0 表示不折行；MaxHeight > 0 时在该高度内做垂直对齐。
	MaxWidth    float64
	MaxHeight   float64
	Font        FontRef
	Size        float64
	Color       Color
	HAlign      HAlign
	VAlign      VAlign
	LineSpacing float64
	Hyphenate   bool
	// Hidden 只测量不绘制。
	Hidden bool
}

// Dimension 是文本块实际占据的区域，Y 为顶部。
type Dimension struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// WrapParagraph 只折行不绘制。
func WrapParagraph(p Paragraph, m TextMeasurer) (Block, error) {
	w, err := NewWrapper(m, p.Font, p.Size, p.LineSpacing)
	if err != nil {
		return Block{}, err
	}
	return w.Wrap(p.Text, WrapOptions{MaxWidth: p.MaxWidth, Hyphenate: p.Hyphenate, Align: p.HAlign})
}

// DrawParagraph 折行并逐行绘制文本，返回文本块的区域。
func DrawParagraph(c Canvas, p Paragraph, m TextMeasurer) (Dimension, error) {
	block, err := WrapParagraph(p, m)
	if err != nil {
		return Dimension{}, fmt.Errorf("段落折行失败: %w", err)
	}
	dim := Dimension{X: p.X, Y: p.Top, Width: block.Width, Height: block.Height}
	if p.MaxWidth > 0 {
		dim.Width = p.MaxWidth
	}
	if p.Hidden {
		return dim, nil
	}
	err = drawBlock(c, block, blockPlacement{
		X:         p.X,
		Top:       p.Top,
		BoxHeight: p.MaxHeight,
		VAlign:    p.VAlign,
		Font:      p.Font,
		Size:      p.Size,
		Color:     p.Color,
	})
	return dim, err
}

type blockPlacement struct {
	X, Top    float64
	BoxHeight float64
	VAlign    VAlign
	Font      FontRef
	Size      float64
	Color     Color
}

// drawBlock 按垂直对齐确定首行顶部，随后每行下移 行高+行距。
func drawBlock(c Canvas, block Block, at blockPlacement) error {
	top := at.Top
	if at.BoxHeight > 0 {
		switch at.VAlign {
		case VAlignCenter:
			top -= (at.BoxHeight - block.Height) / 2
		case VAlignBottom:
			top -= at.BoxHeight - block.Height
		}
	}
	for _, line := range block.Lines {
		if line.Content != "" {
			run := TextRun{
				Text:   line.Content,
				X:      at.X + line.Offset,
				Y:      top - block.LineHeight,
				Height: block.LineHeight,
				Font:   at.Font,
				Size:   at.Size,
				Color:  at.Color,
			}
			if err := c.Text(run); err != nil {
				return err
			}
		}
		top -= block.LineHeight + block.LineSpacing
	}
	return nil
}
