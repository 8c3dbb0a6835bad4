package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件定义排版核心的输入模型：单元格、行与表格样式。所有长度单位均为 pt。

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Gray 将 0-1 的灰度值转换为 Color。
func Gray(v float64) Color {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c := int(v*255 + 0.5)
	return Color{R: c, G: c, B: c}
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// ParseColor 解析 #RGB、#RRGGBB 与 #RRGGBBAA，透明度分量被忽略。
func ParseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if hex == strings.TrimSpace(value) {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	switch len(hex) {
	case 3:
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var rgb [3]int
	for i := range rgb {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
		}
		rgb[i] = int(v)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// Hex 返回 #RRGGBB 形式。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HAlign 水平对齐方式。
type HAlign int

const (
	HAlignLeft HAlign = iota
	HAlignCenter
	HAlignRight
)

func (a HAlign) String() string {
	switch a {
	case HAlignCenter:
		return "center"
	case HAlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseHAlign 解析 left/center/right（以及 start/end/middle 别名）。
func ParseHAlign(v string) (HAlign, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "left", "start":
		return HAlignLeft, nil
	case "center", "middle":
		return HAlignCenter, nil
	case "right", "end":
		return HAlignRight, nil
	default:
		return HAlignLeft, fmt.Errorf("无法识别的水平对齐方式：%s", v)
	}
}

// VAlign 垂直对齐方式。
type VAlign int

const (
	VAlignTop VAlign = iota
	VAlignCenter
	VAlignBottom
)

func (a VAlign) String() string {
	switch a {
	case VAlignCenter:
		return "center"
	case VAlignBottom:
		return "bottom"
	default:
		return "top"
	}
}

// ParseVAlign 解析 top/center/bottom。
func ParseVAlign(v string) (VAlign, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "top":
		return VAlignTop, nil
	case "center", "middle":
		return VAlignCenter, nil
	case "bottom":
		return VAlignBottom, nil
	default:
		return VAlignTop, fmt.Errorf("无法识别的垂直对齐方式：%s", v)
	}
}

// FontRef 是字体的标识（通常是字体路径或 embed:<name>），由宿主负责解析。
type FontRef string

// Edges 描述四条边框各自的线宽，0 表示不绘制该边。
type Edges struct {
	Top    float64 `json:"top,omitempty"`
	Right  float64 `json:"right,omitempty"`
	Bottom float64 `json:"bottom,omitempty"`
	Left   float64 `json:"left,omitempty"`
}

func (e Edges) IsZero() bool {
	return e.Top <= 0 && e.Right <= 0 && e.Bottom <= 0 && e.Left <= 0
}

// Cell 是表格中的一个单元格。Colspan/Rowspan 小于 1 时按 1 处理。
type Cell struct {
	Content string `json:"content"`
	Colspan int    `json:"colspan"`
	Rowspan int    `json:"rowspan"`
	HAlign  HAlign `json:"halign"`
	VAlign  VAlign `json:"valign"`
	// 以下为单元格级别的覆盖值，零值表示沿用表格样式
	Background *Color  `json:"background,omitempty"`
	TextColor  *Color  `json:"textColor,omitempty"`
	Font       FontRef `json:"font,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	Edges      Edges   `json:"edges"`
	// BorderWidth 为 0 时使用表格样式的边框宽度，小于 0 时不绘制整体边框。
	BorderWidth float64 `json:"borderWidth,omitempty"`
	// Width 为 0 表示该列宽度不固定。
	Width  float64 `json:"width,omitempty"`
	Header bool    `json:"header,omitempty"`
}

// NewCell 返回默认垂直居中的单元格。
func NewCell(content string) Cell {
	return Cell{Content: content, Colspan: 1, Rowspan: 1, VAlign: VAlignCenter}
}

func (c Cell) colspan() int {
	if c.Colspan < 1 {
		return 1
	}
	return c.Colspan
}

func (c Cell) rowspan() int {
	if c.Rowspan < 1 {
		return 1
	}
	return c.Rowspan
}

// Row 是表格中的一行。
type Row struct {
	Cells []Cell `json:"cells"`
	// Height 是行高下限，0 表示只按内容计算。
	Height float64 `json:"height,omitempty"`
	Header bool    `json:"header,omitempty"`
	// BreakBefore 要求在本行之前换页（若本行是当前页第一行则忽略）。
	BreakBefore bool `json:"breakBefore,omitempty"`
}

// TableStyle 保存表格级别的默认样式。
type TableStyle struct {
	BorderWidth float64 `json:"borderWidth"`
	CellPadding float64 `json:"cellPadding"`
	Font        FontRef `json:"font"`
	FontSize    float64 `json:"fontSize"`
	LineSpacing float64 `json:"lineSpacing"`
	Hyphenate   bool    `json:"hyphenate"`

	BorderColor Color `json:"borderColor"`
	TextColor   Color `json:"textColor"`
	// nil 表示不填充
	HeaderBackground  *Color `json:"headerBackground,omitempty"`
	EvenRowBackground *Color `json:"evenRowBackground,omitempty"`
	OddRowBackground  *Color `json:"oddRowBackground,omitempty"`
}

// DefaultTableStyle 返回默认表格样式。
func DefaultTableStyle() TableStyle {
	header := Gray(0.9)
	even := Gray(0.97)
	odd := White
	return TableStyle{
		BorderWidth:       0.5,
		CellPadding:       4,
		FontSize:          10,
		LineSpacing:       2,
		Hyphenate:         true,
		BorderColor:       Gray(0.5),
		TextColor:         Black,
		HeaderBackground:  &header,
		EvenRowBackground: &even,
		OddRowBackground:  &odd,
	}
}

// defaultRowHeight 是行高无法由内容或声明得出时使用的回退值。
func (s TableStyle) defaultRowHeight() float64 {
	return s.FontSize + 2*s.CellPadding
}
