package layout

import (
	"errors"
	"strings"
	"testing"
)

func newTestWrapper(t *testing.T, spacing float64) *Wrapper {
	t.Helper()
	w, err := NewWrapper(&stubMeasurer{}, "", 10, spacing)
	if err != nil {
		t.Fatalf("创建折行器失败: %v", err)
	}
	return w
}

// rejoin 去掉断词插入的连字符并把行用空格拼回。
func rejoin(lines []TextLine) string {
	var b strings.Builder
	for i, ln := range lines {
		if ln.Hyphenated {
			b.WriteString(strings.TrimSuffix(ln.Content, "-"))
			continue
		}
		b.WriteString(ln.Content)
		if i < len(lines)-1 {
			b.WriteString(" ")
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func contents(lines []TextLine) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Content
	}
	return out
}

func TestWrapGreedy(t *testing.T) {
	w := newTestWrapper(t, 2)
	block, err := w.Wrap("aaa bbb ccc", WrapOptions{MaxWidth: 35})
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	got := contents(block.Lines)
	if strings.Join(got, "|") != "aaa bbb|ccc" {
		t.Fatalf("折行结果不符: %q", got)
	}
	if !near(block.Lines[0].Width, 35) || !near(block.Lines[1].Width, 15) {
		t.Fatalf("行宽不符: %+v", block.Lines)
	}
	// 2 行 * 10 + 1 * 2
	if !near(block.Height, 22) {
		t.Fatalf("块高度期望 22，实际 %g", block.Height)
	}
}

func TestWrapHyphenatesLongWord(t *testing.T) {
	w := newTestWrapper(t, 0)
	word := "supercalifragilisticexpialidocious"
	block, err := w.Wrap(word, WrapOptions{MaxWidth: 100, Hyphenate: true})
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if len(block.Lines) < 2 {
		t.Fatalf("超长单词应至少拆成两行，实际 %q", contents(block.Lines))
	}
	first := block.Lines[0]
	if !strings.HasSuffix(first.Content, "-") || !first.Hyphenated {
		t.Fatalf("首行应以断词连字符结尾: %+v", first)
	}
	// 0.8*100 = 80pt 预算，前缀+连字符最多 16 个字符
	if first.Content != "supercalifragil-" {
		t.Fatalf("断词前缀不符: %q", first.Content)
	}
	if rejoin(block.Lines) != word {
		t.Fatalf("断词后无法还原原文: %q", rejoin(block.Lines))
	}
}

func TestWrapWithoutHyphenationKeepsWord(t *testing.T) {
	w := newTestWrapper(t, 0)
	block, err := w.Wrap("tiny supercalifragilisticexpialidocious end", WrapOptions{MaxWidth: 100})
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	got := strings.Join(contents(block.Lines), "|")
	if got != "tiny|supercalifragilisticexpialidocious|end" {
		t.Fatalf("未开启断词时超长单词应独占一行: %q", got)
	}
	if block.Lines[1].Width <= 100 {
		t.Fatalf("超长行宽度应超过限制，实际 %g", block.Lines[1].Width)
	}
}

func TestWrapSingleCharacterFallback(t *testing.T) {
	w := newTestWrapper(t, 0)
	// 预算 8pt，连 "a-"(10pt) 都放不下，只能切出一个字符
	block, err := w.Wrap("abc", WrapOptions{MaxWidth: 10, Hyphenate: true})
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	got := strings.Join(contents(block.Lines), "|")
	if got != "a-|bc" {
		t.Fatalf("单字符回退结果不符: %q", got)
	}
}

func TestWrapOverflowWordAfterTextIsHyphenated(t *testing.T) {
	w := newTestWrapper(t, 0)
	block, err := w.Wrap("ab abcdefghijklmnopqrstuvwxyz", WrapOptions{MaxWidth: 50, Hyphenate: true})
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if block.Lines[0].Content != "ab" {
		t.Fatalf("首行应为 ab，实际 %q", block.Lines[0].Content)
	}
	for i, ln := range block.Lines {
		if ln.Width > 50+eps {
			t.Fatalf("第 %d 行超宽: %+v", i, ln)
		}
	}
	if rejoin(block.Lines) != "ab abcdefghijklmnopqrstuvwxyz" {
		t.Fatalf("无法还原原文: %q", rejoin(block.Lines))
	}
}

func TestWrapRoundTrip(t *testing.T) {
	texts := []string{
		"the quick brown fox jumps over the lazy dog",
		"  leading and   trailing   spaces  ",
		"Pneumonoultramicroscopicsilicovolcanoconiosis is a long word indeed",
		"a b c d e f g h i j k l m n o p",
		"中文字符也可以 按空白 分词",
	}
	widths := []float64{12, 25, 40, 77, 130, 1000}
	w := newTestWrapper(t, 1)
	for _, text := range texts {
		want := strings.Join(strings.Fields(text), " ")
		for _, width := range widths {
			for _, hyph := range []bool{true, false} {
				block, err := w.Wrap(text, WrapOptions{MaxWidth: width, Hyphenate: hyph})
				if err != nil {
					t.Fatalf("折行失败: %v", err)
				}
				if got := rejoin(block.Lines); got != want {
					t.Fatalf("往返不一致 width=%g hyph=%v: got=%q want=%q", width, hyph, got, want)
				}
				n := float64(len(block.Lines))
				if !near(block.Height, n*10+(n-1)*1) {
					t.Fatalf("块高度不符: lines=%g height=%g", n, block.Height)
				}
			}
		}
	}
}

func TestWrapEmptyAndNewlines(t *testing.T) {
	w := newTestWrapper(t, 2)
	block, err := w.Wrap("   ", WrapOptions{MaxWidth: 50})
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if len(block.Lines) != 0 || block.Height != 0 {
		t.Fatalf("空白文本应没有行，实际 %+v", block)
	}

	block, err = w.Wrap("foo\n\nbar", WrapOptions{MaxWidth: 100})
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	got := contents(block.Lines)
	if len(got) != 3 || got[1] != "" {
		t.Fatalf("显式换行应保留空行，实际 %q", got)
	}
}

func TestWrapAlignmentOffsets(t *testing.T) {
	w := newTestWrapper(t, 0)
	block, err := w.Wrap("abcd", WrapOptions{MaxWidth: 100, Align: HAlignCenter})
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if !near(block.Lines[0].Offset, 40) {
		t.Fatalf("居中偏移期望 40，实际 %g", block.Lines[0].Offset)
	}
	block, err = w.Wrap("abcd", WrapOptions{MaxWidth: 100, Align: HAlignRight})
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if !near(block.Lines[0].Offset, 80) {
		t.Fatalf("右对齐偏移期望 80，实际 %g", block.Lines[0].Offset)
	}
}

func TestWrapPropagatesMeasureError(t *testing.T) {
	w, err := NewWrapper(&stubMeasurer{fail: "boom"}, "", 10, 0)
	if err != nil {
		t.Fatalf("创建折行器失败: %v", err)
	}
	if _, err := w.Wrap("ok boom", WrapOptions{MaxWidth: 100}); !errors.Is(err, errStubMeasure) {
		t.Fatalf("测量错误应原样向上传递，实际 %v", err)
	}
}
