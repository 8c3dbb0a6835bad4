package layout

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// hyphenBudget 是断词时前缀（含连字符）可占用的最大行宽比例。
const hyphenBudget = 0.8

// TextLine 是折行后的一行。
type TextLine struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
	// Offset 是按对齐方式计算出的行内水平偏移。
	Offset float64 `json:"offset,omitempty"`
	// Hyphenated 表示行尾的 "-" 由断词插入，不属于原文。
	Hyphenated bool `json:"hyphenated,omitempty"`
}

// Block 是一段文本折行后的结果。
type Block struct {
	Lines       []TextLine `json:"lines"`
	LineHeight  float64    `json:"lineHeight"`
	LineSpacing float64    `json:"lineSpacing"`
	// Height = 行数*行高 + (行数-1)*行距
	Height float64 `json:"height"`
	// Width 是最宽一行的宽度。
	Width float64 `json:"width"`
}

// WrapOptions 控制一次折行。MaxWidth <= 0 表示不限制宽度。
type WrapOptions struct {
	MaxWidth  float64
	Hyphenate bool
	Align     HAlign
}

// Wrapper 是无状态的贪心折行器，绑定一种字体与字号。
type Wrapper struct {
	measurer    TextMeasurer
	font        FontRef
	size        float64
	lineSpacing float64
	lineHeight  float64
	spaceWidth  float64
}

// NewWrapper 创建折行器，行高取字形 "X" 的测量高度。
func NewWrapper(m TextMeasurer, font FontRef, size, lineSpacing float64) (*Wrapper, error) {
	if m == nil {
		return nil, fmt.Errorf("layout: 缺少文本测量器")
	}
	x, err := m.Measure("X", font, size)
	if err != nil {
		return nil, fmt.Errorf("测量行高失败: %w", err)
	}
	space, err := m.Measure(" ", font, size)
	if err != nil {
		return nil, fmt.Errorf("测量空格宽度失败: %w", err)
	}
	return &Wrapper{
		measurer:    m,
		font:        font,
		size:        size,
		lineSpacing: lineSpacing,
		lineHeight:  x.Height,
		spaceWidth:  space.Width,
	}, nil
}

// LineHeight 返回单行高度。
func (w *Wrapper) LineHeight() float64 { return w.lineHeight }

// Height 计算 n 行文本块的总高度。
func (w *Wrapper) Height(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n)*w.lineHeight + float64(n-1)*w.lineSpacing
}

// Wrap 将文本按空白分词后贪心折行，显式换行符总是开始新的一行。
func (w *Wrapper) Wrap(text string, opts WrapOptions) (Block, error) {
	block := Block{LineHeight: w.lineHeight, LineSpacing: w.lineSpacing}
	if strings.TrimSpace(text) == "" {
		return block, nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, para := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		lines, err := w.wrapWords(strings.Fields(para), opts)
		if err != nil {
			return Block{}, err
		}
		block.Lines = append(block.Lines, lines...)
	}
	for i := range block.Lines {
		ln := &block.Lines[i]
		if ln.Width > block.Width {
			block.Width = ln.Width
		}
		if opts.MaxWidth > 0 {
			switch opts.Align {
			case HAlignCenter:
				ln.Offset = (opts.MaxWidth - ln.Width) / 2
			case HAlignRight:
				ln.Offset = opts.MaxWidth - ln.Width
			}
		}
	}
	block.Height = w.Height(len(block.Lines))
	return block, nil
}

func (w *Wrapper) wrapWords(words []string, opts WrapOptions) ([]TextLine, error) {
	if len(words) == 0 {
		return []TextLine{{}}, nil
	}
	limit := opts.MaxWidth
	unbounded := limit <= 0

	var (
		lines   []TextLine
		current []string
		width   float64
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		lines = append(lines, TextLine{Content: strings.Join(current, " "), Width: width})
		current = current[:0]
		width = 0
	}

	queue := append([]string(nil), words...)
	for len(queue) > 0 {
		word := queue[0]
		queue = queue[1:]
		ww, err := w.width(word)
		if err != nil {
			return nil, err
		}

		if len(current) == 0 {
			if unbounded || ww <= limit {
				current = append(current, word)
				width = ww
				continue
			}
			// 单词本身超宽
			if !opts.Hyphenate || utf8.RuneCountInString(word) < 2 {
				lines = append(lines, TextLine{Content: word, Width: ww})
				continue
			}
			head, rest, err := w.breakWord(word, limit)
			if err != nil {
				return nil, err
			}
			hw, err := w.width(head + "-")
			if err != nil {
				return nil, err
			}
			lines = append(lines, TextLine{Content: head + "-", Width: hw, Hyphenated: true})
			queue = append([]string{rest}, queue...)
			continue
		}

		if width+w.spaceWidth+ww <= limit || unbounded {
			current = append(current, word)
			width += w.spaceWidth + ww
			continue
		}
		// 溢出：结束当前行，该词在新行重新处理
		flush()
		queue = append([]string{word}, queue...)
	}
	flush()
	return lines, nil
}

// breakWord 在 [1, 中点] 范围内二分查找加上连字符后不超过 0.8*limit 的最长前缀，
// 找不到时只切出一个字符。
func (w *Wrapper) breakWord(word string, limit float64) (string, string, error) {
	runes := []rune(word)
	budget := limit * hyphenBudget
	lo, hi := 1, len(runes)/2
	best := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		pw, err := w.width(string(runes[:mid]) + "-")
		if err != nil {
			return "", "", err
		}
		if pw <= budget {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best == 0 {
		best = 1
	}
	return string(runes[:best]), string(runes[best:]), nil
}

func (w *Wrapper) width(s string) (float64, error) {
	ext, err := w.measurer.Measure(s, w.font, w.size)
	if err != nil {
		return 0, fmt.Errorf("测量文本 %q 失败: %w", s, err)
	}
	return ext.Width, nil
}
