package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/renderer"
)

// 布局使用 pt，tdewolff/canvas 使用 mm；两者只在本包内换算。

// Renderer draws layout results via github.com/tdewolff/canvas and measures
// text with the same font faces it renders with.
type Renderer struct {
	baseDir      string
	maxImageSize int
	log          *zap.Logger

	fontMu   sync.Mutex
	families map[layout.FontRef]*canvas.FontFamily
}

var (
	_ renderer.Backend    = (*Renderer)(nil)
	_ layout.TextMeasurer = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// BaseDir resolves relative font and image paths.
	BaseDir string
	// MaxImageSize downsamples images whose longer side exceeds it (pixels), 0 disables.
	MaxImageSize int
	Logger       *zap.Logger
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with the given options.
func NewRendererWithOptions(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		baseDir:      opts.BaseDir,
		maxImageSize: opts.MaxImageSize,
		log:          log,
		families:     map[layout.FontRef]*canvas.FontFamily{},
	}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianI) // 与布局一致：左下角为原点，y 轴向上

		if err := page.Replay(&pageCanvas{r: r, ctx: ctx}); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	r.log.Debug("PDF 渲染完成", zap.Int("pages", len(result.Pages)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// Measure 实现 layout.TextMeasurer：宽度取字体面的前进宽度，高度为上升部与下降部之和（pt）。
func (r *Renderer) Measure(text string, font layout.FontRef, size float64) (layout.Extent, error) {
	face, err := r.fontFace(font, size, layout.Black)
	if err != nil {
		return layout.Extent{}, err
	}
	m := face.Metrics()
	return layout.Extent{
		Width:  toPt(face.TextWidth(text)),
		Height: toPt(m.Ascent + math.Abs(m.Descent)),
	}, nil
}

// pageCanvas 把 layout.Canvas 的绘制操作转发到一页 canvas.Context 上。
type pageCanvas struct {
	r   *Renderer
	ctx *canvas.Context
}

var _ layout.Canvas = (*pageCanvas)(nil)

func (p *pageCanvas) Rect(rc layout.Rect) error {
	if rc.Width <= 0 || rc.Height <= 0 {
		return nil
	}
	p.applyStyle(rc.Style)
	p.ctx.DrawPath(toMm(rc.X), toMm(rc.Y), canvas.Rectangle(toMm(rc.Width), toMm(rc.Height)))
	return nil
}

func (p *pageCanvas) Line(ln layout.Line) error {
	if ln.Width <= 0 {
		return nil
	}
	p.ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	p.ctx.SetStrokeColor(colorFromLayout(ln.Color))
	p.ctx.SetStrokeWidth(toMm(ln.Width))
	path := &canvas.Path{}
	path.MoveTo(0, 0)
	path.LineTo(toMm(ln.X2-ln.X1), toMm(ln.Y2-ln.Y1))
	p.ctx.DrawPath(toMm(ln.X1), toMm(ln.Y1), path)
	return nil
}

func (p *pageCanvas) Polygon(pg layout.Polygon) error {
	if len(pg.Points) < 3 {
		return fmt.Errorf("多边形至少需要 3 个顶点，实际 %d 个", len(pg.Points))
	}
	p.applyStyle(pg.Style)
	path := &canvas.Path{}
	path.MoveTo(toMm(pg.Points[0].X), toMm(pg.Points[0].Y))
	for _, pt := range pg.Points[1:] {
		path.LineTo(toMm(pt.X), toMm(pt.Y))
	}
	path.Close()
	p.ctx.DrawPath(0, 0, path)
	return nil
}

func (p *pageCanvas) Circle(c layout.Circle) error {
	if c.R <= 0 {
		return nil
	}
	p.applyStyle(c.Style)
	p.ctx.DrawPath(toMm(c.CX), toMm(c.CY), canvas.Circle(toMm(c.R)))
	return nil
}

func (p *pageCanvas) Text(t layout.TextRun) error {
	if t.Text == "" {
		return nil
	}
	face, err := p.r.fontFace(t.Font, t.Size, t.Color)
	if err != nil {
		return err
	}
	// TextRun.Y 为行框底部，基线位于其上方一个下降部处
	baseline := toMm(t.Y) + math.Abs(face.Metrics().Descent)
	p.ctx.DrawText(toMm(t.X), baseline, canvas.NewTextLine(face, t.Text, canvas.Left))
	return nil
}

func (p *pageCanvas) Image(box layout.ImageBox) error {
	img, err := p.r.loadImage(box.Src)
	if err != nil {
		return err
	}
	if box.Angle != 0 {
		img = imaging.Rotate(img, box.Angle, color.Transparent)
	}
	px := img.Bounds().Dx()
	py := img.Bounds().Dy()
	if px == 0 || py == 0 {
		return fmt.Errorf("图片 %s 尺寸为 0", box.Src)
	}

	// 未指定的边按 72 dpi（1 像素 = 1pt）推算
	w, h := box.Width, box.Height
	switch {
	case w <= 0 && h <= 0:
		w, h = float64(px), float64(py)
	case w <= 0:
		w = h * float64(px) / float64(py)
	case h <= 0:
		h = w * float64(py) / float64(px)
	}

	x, y := box.X, box.Y
	if box.Fit {
		scale := math.Min(w/float64(px), h/float64(py))
		dw, dh := float64(px)*scale, float64(py)*scale
		x += (w - dw) / 2
		y += (h - dh) / 2
		w = dw
	} else if target := int(math.Round(float64(px) * h / w)); target > 0 && target != py {
		// 拉伸到包围盒比例，DrawImage 只接受统一分辨率
		img = imaging.Resize(img, px, target, imaging.Lanczos)
	}

	dpmm := float64(px) / toMm(w)
	if dpmm <= 0 {
		dpmm = 1
	}
	p.ctx.DrawImage(toMm(x), toMm(y), img, canvas.DPMM(dpmm))
	return nil
}

func (p *pageCanvas) applyStyle(s layout.ShapeStyle) {
	if s.Fill != nil {
		p.ctx.SetFillColor(colorFromLayout(*s.Fill))
	} else {
		p.ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	}
	if s.Stroke != nil && s.StrokeWidth > 0 {
		p.ctx.SetStrokeColor(colorFromLayout(*s.Stroke))
		p.ctx.SetStrokeWidth(toMm(s.StrokeWidth))
	} else {
		p.ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		p.ctx.SetStrokeWidth(0)
	}
}

func (r *Renderer) loadImage(src string) (image.Image, error) {
	if src == "" {
		return nil, fmt.Errorf("图片缺少 src")
	}
	if strings.HasPrefix(src, "embed:") {
		return nil, fmt.Errorf("图片资源 %s 未找到（embed 仅支持内置字体）", src)
	}
	path := r.resolvePath(src)
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
		}
		return rasterizeSVG(data, r.maxImageSize)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	if limit := r.maxImageSize; limit > 0 {
		if b := img.Bounds(); b.Dx() > limit || b.Dy() > limit {
			r.log.Debug("缩小图片", zap.String("src", src), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()), zap.Int("limit", limit))
			img = imaging.Fit(img, limit, limit, imaging.Lanczos)
		}
	}
	return img, nil
}

func (r *Renderer) resolvePath(src string) string {
	if filepath.IsAbs(src) || r.baseDir == "" {
		return src
	}
	return filepath.Join(r.baseDir, src)
}

// fontFace 返回指定字号（pt）的字体面。
func (r *Renderer) fontFace(font layout.FontRef, size float64, col layout.Color) (*canvas.FontFace, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号必须大于 0，实际为 %g", size)
	}
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontRef) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[font]; ok {
		return family, nil
	}

	family := canvas.NewFontFamily(string(font))
	data, err := r.loadFontBytes(font)
	if err == nil {
		err = family.LoadFont(data, 0, canvas.FontRegular)
	}
	if err != nil {
		r.log.Warn("字体加载失败，改用内置字体", zap.String("font", string(font)), zap.Error(err))
		fallback, fbErr := fonts.Load(fonts.Default)
		if fbErr != nil {
			return nil, fbErr
		}
		family = canvas.NewFontFamily(fonts.Default)
		if err := family.LoadFont(fallback, 0, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("加载内置字体失败: %w", err)
		}
	}
	r.families[font] = family
	return family, nil
}

func (r *Renderer) loadFontBytes(font layout.FontRef) ([]byte, error) {
	src := string(font)
	if src == "" || strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	return os.ReadFile(r.resolvePath(src))
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
