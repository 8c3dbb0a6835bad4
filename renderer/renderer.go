package renderer

import "github.com/ByLCY/quire/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF 或图像。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 使用同一套字体既测量文本又输出页面，保证排版与渲染的宽度一致。
type Backend interface {
	Renderer
	layout.TextMeasurer
}
