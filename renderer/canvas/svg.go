package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultSVGSize 是未限制 MaxImageSize 时 SVG 长边的栅格化像素数。
const defaultSVGSize = 2048

// rasterizeSVG 把 SVG 按 viewBox 比例栅格化，长边为 longSide 像素，背景透明。
func rasterizeSVG(data []byte, longSide int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解析 SVG 失败: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		vw, vh = 1, 1
	}
	if longSide <= 0 {
		longSide = defaultSVGSize
	}
	scale := float64(longSide) / math.Max(vw, vh)
	w := max(int(math.Round(vw*scale)), 1)
	h := max(int(math.Round(vh*scale)), 1)

	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return dst, nil
}
