package measure

import (
	"errors"
	"testing"

	"github.com/ByLCY/quire/layout"
)

func TestMonoWidths(t *testing.T) {
	m := NewMono()
	ext, err := m.Measure("abcd", "", 10)
	if err != nil {
		t.Fatalf("测量失败: %v", err)
	}
	if ext.Width != 20 || ext.Height != 12 {
		t.Fatalf("ASCII 测量不符: %+v", ext)
	}
	wide, _ := m.Measure("中文", "", 10)
	if wide.Width != 20 {
		t.Fatalf("宽字符应占两列，实际 %+v", wide)
	}
}

func TestMemoCachesAndPropagatesErrors(t *testing.T) {
	calls := 0
	inner := layout.MeasureFunc(func(text string, font layout.FontRef, size float64) (layout.Extent, error) {
		calls++
		if text == "bad" {
			return layout.Extent{}, errors.New("bad text")
		}
		return layout.Extent{Width: float64(len(text)), Height: size}, nil
	})
	m := NewMemo(inner)
	for i := 0; i < 3; i++ {
		if _, err := m.Measure("abc", "f", 10); err != nil {
			t.Fatalf("测量失败: %v", err)
		}
	}
	if calls != 1 || m.Hits() != 2 {
		t.Fatalf("应只调用一次内部测量器: calls=%d hits=%d", calls, m.Hits())
	}
	if _, err := m.Measure("abc", "f", 12); err != nil || calls != 2 {
		t.Fatalf("不同字号应重新测量")
	}
	if _, err := m.Measure("bad", "f", 10); err == nil {
		t.Fatalf("内部错误应原样返回")
	}
}
