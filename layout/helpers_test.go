package layout

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"
)

const eps = 1e-6

// stubMeasurer 每个字符宽 size/2，高 size；fail 非空时对包含它的文本报错。
type stubMeasurer struct {
	fail string
}

var errStubMeasure = errors.New("stub measure failure")

func (s *stubMeasurer) Measure(text string, font FontRef, size float64) (Extent, error) {
	if s.fail != "" && strings.Contains(text, s.fail) {
		return Extent{}, errStubMeasure
	}
	return Extent{Width: float64(utf8.RuneCountInString(text)) * size / 2, Height: size}, nil
}

func near(a, b float64) bool { return math.Abs(a-b) <= eps }

// testStyle 使用整数友好的数值：字号 10、内边距 4、行距 2。
func testStyle() TableStyle {
	s := DefaultTableStyle()
	s.FontSize = 10
	s.CellPadding = 4
	s.LineSpacing = 2
	return s
}

func cells(contents ...string) []Cell {
	out := make([]Cell, len(contents))
	for i, c := range contents {
		out[i] = NewCell(c)
	}
	return out
}

// pageHost 在 Result 上追加新页，每页可用范围相同。
type pageHost struct {
	res   *Result
	frame PageFrame
	limit int
}

func newPageHost(frame PageFrame) *pageHost {
	h := &pageHost{res: &Result{}, frame: frame, limit: 100}
	h.res.AddPage(200, frame.Top)
	return h
}

func (h *pageHost) first() *Page { return h.res.Pages[0] }

func (h *pageHost) NextPage() (Canvas, PageFrame, error) {
	if len(h.res.Pages) >= h.limit {
		return nil, PageFrame{}, errors.New("too many pages")
	}
	return h.res.AddPage(200, h.frame.Top), h.frame, nil
}
