package layout

// Extent 是一段文本的测量结果（pt）。
type Extent struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextMeasurer 测量文本的宽高。对同一 (text, font, size) 必须返回相同结果。
type TextMeasurer interface {
	Measure(text string, font FontRef, size float64) (Extent, error)
}

// MeasureFunc 让普通函数实现 TextMeasurer。
type MeasureFunc func(text string, font FontRef, size float64) (Extent, error)

func (f MeasureFunc) Measure(text string, font FontRef, size float64) (Extent, error) {
	return f(text, font, size)
}
