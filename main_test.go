package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/measure"
)

const sampleDoc = `doc Invoice v1 {
  header {
    text x 0 y 20 { "Page ${PAGE_NUMBER}" }
  }
  page A4 {
    text { "Customer: ${customer}" }
    table {
      row header { cell { "Item" } cell { "Qty" } }
      row { cell { "Paper" } cell { "3" } }
    }
    text color nope { "bad" }
  }
}
`

func testEnv(t *testing.T) *env {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("载入默认配置失败: %v", err)
	}
	return &env{cfg: cfg, log: zap.NewNop()}
}

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.quire")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatalf("写入 DSL 文件失败: %v", err)
	}
	return path
}

func TestTypesetStopsOnErrorByDefault(t *testing.T) {
	e := testEnv(t)
	j := job{source: writeSource(t), data: map[string]any{"customer": "ACME"}}
	if _, err := typeset(e, j, measure.NewMono()); err == nil {
		t.Fatalf("未知颜色应导致排版失败")
	}
}

func TestTypesetContinueOnError(t *testing.T) {
	e := testEnv(t)
	j := job{source: writeSource(t), data: map[string]any{"customer": "ACME"}, continueOnError: true}
	result, err := typeset(e, j, measure.NewMono())
	if err != nil {
		t.Fatalf("容错模式下不应返回错误: %v", err)
	}
	if len(result.Pages) != 1 {
		t.Fatalf("期望 1 页，得到 %d", len(result.Pages))
	}
	var found bool
	for _, run := range result.Pages[0].Texts() {
		if run.Text == "Customer: ACME" {
			found = true
		}
	}
	if !found {
		t.Fatalf("数据绑定未生效")
	}
}

func TestRenderWritesPDF(t *testing.T) {
	e := testEnv(t)
	source := writeSource(t)
	j := job{source: source, data: map[string]any{"customer": "ACME"}, continueOnError: true}
	backend := newBackend(e, source)

	result, err := typeset(e, j, backend)
	if err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	out := filepath.Join(t.TempDir(), "out", "invoice.pdf")
	if err := write(e, backend, result, out); err != nil {
		t.Fatalf("写入 PDF 失败: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读取 PDF 失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("输出不是 PDF")
	}

	debugPath := filepath.Join(t.TempDir(), "layout.json")
	if err := writeDebug(result, debugPath); err != nil {
		t.Fatalf("输出调试 JSON 失败: %v", err)
	}
	if fi, err := os.Stat(debugPath); err != nil || fi.Size() == 0 {
		t.Fatalf("调试 JSON 未写出: %v", err)
	}
}

func TestNewMeasurer(t *testing.T) {
	e := testEnv(t)
	source := writeSource(t)
	backend := newBackend(e, source)

	m, err := newMeasurer("font", backend)
	if err != nil || m != backend {
		t.Fatalf("font 应使用渲染后端测量: %v", err)
	}
	if m, err = newMeasurer("", backend); err != nil || m != backend {
		t.Fatalf("缺省应使用渲染后端测量: %v", err)
	}
	if _, err := newMeasurer("ruler", backend); err == nil {
		t.Fatalf("未知测量方式应报错")
	}

	m, err = newMeasurer("mono", backend)
	if err != nil {
		t.Fatalf("选择 mono 失败: %v", err)
	}
	if _, ok := m.(measure.Mono); !ok {
		t.Fatalf("mono 应返回 measure.Mono，实际 %T", m)
	}
	j := job{source: source, data: map[string]any{"customer": "ACME"}, continueOnError: true}
	result, err := typeset(e, j, m)
	if err != nil {
		t.Fatalf("等宽测量排版失败: %v", err)
	}
	// 等宽测量下字号 10 的单行文本高 12
	runs := result.Pages[0].Texts()
	var body *layout.TextRun
	for i := range runs {
		if runs[i].Text == "Customer: ACME" {
			body = &runs[i]
		}
	}
	if body == nil || math.Abs(body.Height-12) > 1e-6 {
		t.Fatalf("正文应按等宽方式测量: %+v", body)
	}
	out := filepath.Join(t.TempDir(), "mono.pdf")
	if err := write(e, backend, result, out); err != nil {
		t.Fatalf("等宽测量的结果应仍可渲染: %v", err)
	}
}
