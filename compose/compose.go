// Package compose 把解析后的文档排成页面：管理页面生命周期、页眉页脚、
// 自由文本、图形与图片，表格与段落交给 layout 排版。
package compose

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/quire/binding"
	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/measure"
)

// Settings 是文档未声明时使用的默认值，长度单位为 pt。
type Settings struct {
	PageWidth    float64
	PageHeight   float64
	Margin       float64
	HeaderHeight float64
	FooterHeight float64
	// ContinuationGap 是表格续页相对正文顶部额外下移的距离。
	ContinuationGap float64
	// BlockSpacing 是流式对象之间的间距。
	BlockSpacing float64
	Font         layout.FontRef
	FontSize     float64
	LineSpacing  float64
	Hyphenate    bool
	Table        layout.TableStyle
}

// DefaultSettings 返回 A4 页面的默认设置。
func DefaultSettings() Settings {
	return Settings{
		PageWidth:       595,
		PageHeight:      842,
		Margin:          5,
		HeaderHeight:    120,
		FooterHeight:    40,
		ContinuationGap: 50,
		BlockSpacing:    6,
		FontSize:        10,
		LineSpacing:     2,
		Hyphenate:       true,
		Table:           layout.DefaultTableStyle(),
	}
}

// Options 配置 Build。
type Options struct {
	// Measurer 必须与最终渲染使用同一套字体。
	Measurer layout.TextMeasurer
	// Settings 为 nil 时使用 DefaultSettings。
	Settings *Settings
	Logger   *zap.Logger
	// ContinueOnError 为 true 时跳过失败的文本、图片与表格，错误合并后随结果一起返回。
	ContinueOnError bool
}

type builder struct {
	set      Settings
	res      Resources
	scope    binding.Scope
	measurer layout.TextMeasurer
	log      *zap.Logger
	tolerant bool

	result *layout.Result
	header band
	footer band
	errs   error
}

// Build 根据 DSL AST 生成页面显示列表。ContinueOnError 时即使返回错误，结果仍然可用。
func Build(doc *dsl.Document, data any, opts Options) (*layout.Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Measurer == nil {
		return nil, fmt.Errorf("compose: 缺少文本测量器")
	}
	set := DefaultSettings()
	if opts.Settings != nil {
		set = *opts.Settings
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	b := &builder{
		set:      set,
		res:      res,
		scope:    binding.Scope{Data: data},
		measurer: measure.NewMemo(opts.Measurer),
		log:      log,
		tolerant: opts.ContinueOnError,
		result:   &layout.Result{Meta: collectMeta(doc)},
	}
	if f, ok := res.Fonts["Body"]; ok && set.Font == "" {
		b.set.Font = f
	}

	for _, section := range doc.Sections {
		switch {
		case section.Header != nil:
			if b.header, err = parseBand(section.Header); err != nil {
				return nil, fmt.Errorf("header: %w", err)
			}
		case section.Footer != nil:
			if b.footer, err = parseBand(section.Footer); err != nil {
				return nil, fmt.Errorf("footer: %w", err)
			}
		}
	}

	sections := 0
	for _, section := range doc.Sections {
		if section.Page == nil {
			continue
		}
		sections++
		if err := b.buildPages(section.Page); err != nil {
			return nil, fmt.Errorf("第 %d 个 page 段落: %w", sections, err)
		}
	}
	if sections == 0 {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}
	log.Debug("文档排版完成", zap.Int("pages", len(b.result.Pages)), zap.Int("sections", sections))
	return b.result, b.errs
}

// buildPages 为一个 page 段落开启新页并依次处理其中的命令。
func (b *builder) buildPages(section *dsl.PageSection) error {
	if section.Block == nil {
		return fmt.Errorf("page 段落缺少内容")
	}
	setup, err := b.pageSetup(section.Spec)
	if err != nil {
		return err
	}
	pc := &pageCollector{b: b, setup: setup}
	if err := pc.newPage(); err != nil {
		return err
	}
	return b.processBlock(section.Block, &pc.body)
}

// processBlock 依次处理 block 内的命令。
func (b *builder) processBlock(block *dsl.Block, r *region) error {
	for _, stmt := range block.Statements {
		if stmt.Command == nil {
			continue
		}
		cmd := stmt.Command
		var err error
		switch cmd.Name {
		case "text":
			err = b.handleText(cmd, r)
		case "table":
			err = b.handleTable(cmd, r)
		case "image":
			err = b.handleImage(cmd, r)
		case "line", "rect", "square", "circle", "triangle":
			err = b.handleShape(cmd, r)
		case "pagebreak":
			if r.host != nil {
				err = r.host.newPage()
			}
		default:
			b.log.Debug("忽略未知命令", zap.String("command", cmd.Name), zap.Int("line", cmd.Pos.Line))
			continue
		}
		if err == nil {
			continue
		}
		err = fmt.Errorf("第 %d 行 %s: %w", cmd.Pos.Line, cmd.Name, err)
		if !b.tolerant || cmd.Name == "pagebreak" {
			return err
		}
		b.log.Warn("跳过排版失败的对象", zap.Error(err))
		b.errs = multierr.Append(b.errs, err)
	}
	return nil
}

func (b *builder) expand(text string, page int) string {
	return binding.Expand(text, b.scope.WithPage(page))
}
