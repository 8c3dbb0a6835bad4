// Package measure 提供不依赖字体文件的文本测量器。
package measure

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/quire/layout"
)

// Mono 按终端列宽测量文本：每列宽 Advance*size，行高 LineHeight*size。
// 东亚宽字符占两列。适合预览与测试，不需要加载字体。
type Mono struct {
	Advance    float64
	LineHeight float64
}

var _ layout.TextMeasurer = Mono{}

// NewMono 返回每列 0.5em、行高 1.2em 的测量器。
func NewMono() Mono { return Mono{Advance: 0.5, LineHeight: 1.2} }

func (m Mono) Measure(text string, _ layout.FontRef, size float64) (layout.Extent, error) {
	adv, lh := m.Advance, m.LineHeight
	if adv <= 0 {
		adv = 0.5
	}
	if lh <= 0 {
		lh = 1.2
	}
	cols := 0
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > cols {
			cols = w
		}
	}
	return layout.Extent{Width: float64(cols) * adv * size, Height: lh * size}, nil
}
