package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestParseLengthToPT 覆盖常见单位到 pt 的转换。
func TestParseLengthToPT(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{"12pt", 12},
		{"1in", 72},
		{"10mm", 10 * MmToPt},
		{"2.54cm", 25.4 * MmToPt},
		{" 3.5PT ", 3.5},
	}
	for _, c := range cases {
		l, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", c.in, err)
		}
		if got := l.ToPT(); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%q 转 pt 期望 %g，实际 %g", c.in, c.want, got)
		}
	}
	if _, err := ParseLength("abc"); err == nil {
		t.Fatalf("非法长度应返回错误")
	}
}

func TestPercentResolve(t *testing.T) {
	l, err := ParseLength("50%")
	if err != nil {
		t.Fatalf("解析百分比失败: %v", err)
	}
	if got := l.Resolve(500); got != 250 {
		t.Fatalf("50%% of 500 期望 250，实际 %g", got)
	}
}

// TestSpacingResolve 验证行距的倍数与绝对值两种语义。
func TestSpacingResolve(t *testing.T) {
	factor, err := ParseSpacing("0.5x")
	if err != nil {
		t.Fatalf("解析倍数行距失败: %v", err)
	}
	if got := factor.Resolve(10); math.Abs(got-5) > 1e-9 {
		t.Fatalf("0.5x 行距期望 5pt，实际 %g", got)
	}
	abs, err := ParseSpacing("1mm")
	if err != nil {
		t.Fatalf("解析绝对行距失败: %v", err)
	}
	if got := abs.Resolve(10); math.Abs(got-MmToPt) > 1e-9 {
		t.Fatalf("1mm 行距期望 %g，实际 %g", MmToPt, got)
	}
}
