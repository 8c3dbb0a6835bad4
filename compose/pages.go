package compose

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/layout"
)

var pagePresets = map[string][2]float64{
	"A3":     {842, 1191},
	"A4":     {595, 842},
	"A5":     {420, 595},
	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
}

// pageSetup 是一个 page 段落生效的页面几何（pt）。
type pageSetup struct {
	Width        float64
	Height       float64
	Margin       float64
	HeaderHeight float64
	FooterHeight float64
}

// contentTop 是正文区域顶部：页眉紧贴其上。
func (s pageSetup) contentTop() float64 { return s.Height - s.Margin - s.HeaderHeight }

func (s pageSetup) contentBottom() float64 { return s.Margin + s.FooterHeight }

// band 是文档级页眉或页脚，每页重绘一次。
type band struct {
	block     *dsl.Block
	height    float64
	hasHeight bool
}

func parseBand(s *dsl.BandSection) (band, error) {
	_, attrs := parseArgs(s.Params, false)
	h, ok, err := length(attrs, "height", 0)
	if err != nil {
		return band{}, err
	}
	return band{block: s.Block, height: h, hasHeight: ok}, nil
}

// heightFor 决定页眉/页脚高度：page 段落覆盖 > 段落自身声明 > 默认值；未声明页眉页脚时为 0。
func (bd band) heightFor(attrs map[string]string, key string, def float64) (float64, error) {
	h, ok, err := length(attrs, key, 0)
	switch {
	case err != nil:
		return 0, err
	case ok:
		return h, nil
	case bd.block == nil:
		return 0, nil
	case bd.hasHeight:
		return bd.height, nil
	default:
		return def, nil
	}
}

func (b *builder) pageSetup(spec dsl.PageSpec) (pageSetup, error) {
	_, attrs := parseArgs(spec.Params, false)
	setup := pageSetup{Width: b.set.PageWidth, Height: b.set.PageHeight}

	size := strings.ToUpper(spec.Size)
	if size != "DEFAULT" && size != "CUSTOM" {
		base, ok := pagePresets[size]
		if !ok {
			return setup, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
		}
		setup.Width, setup.Height = base[0], base[1]
	}
	var err error
	if setup.Width, err = lengthOr(attrs, "width", 0, setup.Width); err != nil {
		return setup, err
	}
	if setup.Height, err = lengthOr(attrs, "height", 0, setup.Height); err != nil {
		return setup, err
	}
	if flag(attrs, "landscape") && setup.Width < setup.Height {
		setup.Width, setup.Height = setup.Height, setup.Width
	}
	if setup.Margin, err = lengthOr(attrs, "margin", 0, b.set.Margin); err != nil {
		return setup, err
	}
	if setup.HeaderHeight, err = b.header.heightFor(attrs, "header-height", b.set.HeaderHeight); err != nil {
		return setup, err
	}
	if setup.FooterHeight, err = b.footer.heightFor(attrs, "footer-height", b.set.FooterHeight); err != nil {
		return setup, err
	}
	if setup.contentTop() <= setup.contentBottom() {
		return setup, fmt.Errorf("页面 %gx%g: %w", setup.Width, setup.Height, layout.ErrNoUsableHeight)
	}
	return setup, nil
}

// region 是命令排版的目标区域。坐标属于 canvas 自身的坐标系（正文为页面坐标，页眉页脚为带内坐标）。
type region struct {
	canvas layout.Canvas
	x      float64
	width  float64
	top    float64
	bottom float64
	cursor float64
	page   int
	// host 为 nil 时不允许换页（页眉页脚）。
	host *pageCollector
}

// advance 在流式对象放不下时换页。区域已经在页首时不换页，避免无限换页。
func (r *region) advance(height float64) error {
	if r.host == nil || r.cursor-height >= r.bottom || r.cursor >= r.top {
		return nil
	}
	return r.host.newPage()
}

// pageCollector 为一个 page 段落创建页面，并实现 layout.PageHost 供表格换页。
type pageCollector struct {
	b     *builder
	setup pageSetup
	body  region
}

var _ layout.PageHost = (*pageCollector)(nil)

func (pc *pageCollector) newPage() error {
	s := pc.setup
	page := pc.b.result.AddPage(s.Width, s.Height)
	pc.body = region{
		canvas: page,
		x:      s.Margin,
		width:  s.Width - 2*s.Margin,
		top:    s.contentTop(),
		bottom: s.contentBottom(),
		cursor: s.contentTop(),
		page:   page.Number,
		host:   pc,
	}
	if err := pc.drawBand(pc.b.header, s.HeaderHeight, s.contentTop()); err != nil {
		return fmt.Errorf("页眉: %w", err)
	}
	if err := pc.drawBand(pc.b.footer, s.FooterHeight, s.Margin); err != nil {
		return fmt.Errorf("页脚: %w", err)
	}
	pc.b.log.Debug("新建页面", zap.Int("page", page.Number), zap.Float64("top", pc.body.top), zap.Float64("bottom", pc.body.bottom))
	return nil
}

// drawBand 以 (margin, originY) 为带内原点绘制页眉或页脚。
func (pc *pageCollector) drawBand(bd band, height, originY float64) error {
	if bd.block == nil || height <= 0 {
		return nil
	}
	s := pc.setup
	r := &region{
		canvas: layout.Offset(pc.body.canvas, s.Margin, originY),
		width:  s.Width - 2*s.Margin,
		top:    height,
		cursor: height,
		page:   pc.body.page,
	}
	return pc.b.processBlock(bd.block, r)
}

// NextPage 开始新的一页，表格续页从正文顶部再下移 ContinuationGap 处开始。
func (pc *pageCollector) NextPage() (layout.Canvas, layout.PageFrame, error) {
	if err := pc.newPage(); err != nil {
		return nil, layout.PageFrame{}, err
	}
	top := pc.body.top - pc.b.set.ContinuationGap
	if top <= pc.body.bottom {
		top = pc.body.top
	}
	pc.body.cursor = top
	return pc.body.canvas, layout.PageFrame{Top: top, Bottom: pc.body.bottom}, nil
}
