package compose

import (
	"fmt"
	"strings"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/layout"
)

// Resources 保存 resources 段落声明的字体、颜色、图片与样式。
type Resources struct {
	Fonts  map[string]layout.FontRef
	Colors map[string]layout.Color
	Images map[string]ImageResource
	Styles map[string]Style
}

// ImageResource 是具名图片，Width/Height 为默认尺寸（pt）。
type ImageResource struct {
	Name   string
	Src    string
	Width  float64
	Height float64
}

// Style 是一组属性，Extends 指向父样式。
type Style struct {
	Name    string
	Extends string
	Props   map[string]string
}

func collectResources(doc *dsl.Document) (Resources, error) {
	res := Resources{
		Fonts:  map[string]layout.FontRef{},
		Colors: map[string]layout.Color{},
		Images: map[string]ImageResource{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			cmd := stmt.Command
			if len(cmd.Args) == 0 {
				return res, fmt.Errorf("第 %d 行: %s 资源缺少名称", cmd.Pos.Line, cmd.Name)
			}
			name := cmd.Args[0].Value
			switch cmd.Name {
			case "font":
				res.Fonts[name] = layout.FontRef(blockString(cmd.Block, "src"))
			case "color":
				value := cmd.Args[len(cmd.Args)-1].Value
				c, err := layout.ParseColor(value)
				if err != nil {
					return res, fmt.Errorf("第 %d 行: 颜色 %s: %w", cmd.Pos.Line, name, err)
				}
				res.Colors[name] = c
			case "image":
				img, err := parseImageResource(name, cmd.Block)
				if err != nil {
					return res, fmt.Errorf("第 %d 行: 图片 %s: %w", cmd.Pos.Line, name, err)
				}
				res.Images[name] = img
			case "style":
				rawStyles[name] = parseStyleResource(cmd)
			}
		}
	}

	resolvedStyles, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolvedStyles
	return res, nil
}

func collectMeta(doc *dsl.Document) layout.DocumentMeta {
	meta := layout.DocumentMeta{
		Creator: "Quire",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func blockString(block *dsl.Block, key string) string {
	if block == nil {
		return ""
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment != nil && stmt.Assignment.Key == key {
			return valueToString(stmt.Assignment.Value)
		}
	}
	return ""
}

func parseImageResource(name string, block *dsl.Block) (ImageResource, error) {
	img := ImageResource{Name: name, Src: blockString(block, "src")}
	if img.Src == "" {
		return img, fmt.Errorf("缺少 src")
	}
	for key, dst := range map[string]*float64{"width": &img.Width, "height": &img.Height} {
		v := blockString(block, key)
		if v == "" {
			continue
		}
		l, err := layout.ParseLength(v)
		if err != nil {
			return img, err
		}
		*dst = l.ToPT()
	}
	return img, nil
}

func parseStyleResource(cmd *dsl.Command) Style {
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := valueToString(stmt.Assignment.Value); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

// resolveStyles 展开 extends，子样式覆盖父样式。
func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// font 把资源名解析为 FontRef，未声明的名字按字体路径处理。
func (r Resources) font(name string, def layout.FontRef) layout.FontRef {
	if name == "" {
		return def
	}
	if f, ok := r.Fonts[name]; ok {
		return f
	}
	return layout.FontRef(name)
}

// color 解析颜色资源名或 #RGB / #RRGGBB / #RRGGBBAA。
func (r Resources) color(value string) (layout.Color, error) {
	if c, ok := r.Colors[value]; ok {
		return c, nil
	}
	return layout.ParseColor(value)
}

// optionalColor 在值为 none 时返回 nil，属性缺失时返回 def。
func (r Resources) optionalColor(attrs map[string]string, key string, def *layout.Color) (*layout.Color, error) {
	v, ok := attrs[key]
	if !ok {
		return def, nil
	}
	if strings.EqualFold(v, "none") {
		return nil, nil
	}
	c, err := r.color(v)
	if err != nil {
		return nil, fmt.Errorf("属性 %s: %w", key, err)
	}
	return &c, nil
}
