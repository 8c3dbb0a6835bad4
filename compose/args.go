package compose

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/layout"
)

// flags 是不带值的参数，出现即为 true。
var flags = map[string]bool{
	"header":       true,
	"break-before": true,
	"hidden":       true,
	"fit":          true,
	"hyphenate":    true,
	"nohyphenate":  true,
	"landscape":    true,
	"portrait":     true,
}

// attrKeys 是命令可识别的属性名，首个参数若不是属性名则视为样式名。
var attrKeys = map[string]bool{
	"x": true, "y": true, "x1": true, "y1": true, "x2": true, "y2": true, "x3": true, "y3": true,
	"cx": true, "cy": true, "r": true, "size": true, "length": true, "dir": true,
	"width": true, "height": true, "color": true, "font": true, "align": true, "valign": true,
	"spacing": true, "padding": true, "border": true, "border-color": true,
	"border-top": true, "border-right": true, "border-bottom": true, "border-left": true,
	"bg": true, "header-bg": true, "even-bg": true, "odd-bg": true,
	"colspan": true, "rowspan": true, "stroke": true, "stroke-width": true, "fill": true,
	"src": true, "image": true, "angle": true, "margin": true,
	"header-height": true, "footer-height": true,
}

// parseArgs 解析命令参数：可选的样式名，随后是 key value 对与无值的 flag。
func parseArgs(args []*dsl.Lexeme, allowStyle bool) (string, map[string]string) {
	result := map[string]string{}
	if len(args) == 0 {
		return "", result
	}

	cursor := 0
	var style string
	if first := args[0]; allowStyle && first.Type == "Ident" && !flags[first.Value] && !attrKeys[first.Value] {
		style = first.Value
		cursor = 1
	}

	for cursor < len(args) {
		key := args[cursor].Value
		if flags[key] {
			result[key] = "true"
			cursor++
			continue
		}
		if cursor+1 >= len(args) {
			break
		}
		result[key] = args[cursor+1].Value
		cursor += 2
	}

	return style, result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

// length 读取长度属性（pt），百分比相对 reference。
func length(attrs map[string]string, key string, reference float64) (float64, bool, error) {
	v, ok := attrs[key]
	if !ok || strings.TrimSpace(v) == "" {
		return 0, false, nil
	}
	l, err := layout.ParseLength(v)
	if err != nil {
		return 0, false, fmt.Errorf("属性 %s: %w", key, err)
	}
	return l.Resolve(reference), true, nil
}

// lengthOr 与 length 相同，但属性缺失时返回 def。
func lengthOr(attrs map[string]string, key string, reference, def float64) (float64, error) {
	v, ok, err := length(attrs, key, reference)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

func intAttr(attrs map[string]string, key string, def int) (int, error) {
	v, ok := attrs[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("属性 %s 需要整数: %w", key, err)
	}
	return n, nil
}

func flag(attrs map[string]string, key string) bool {
	v, ok := attrs[key]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// hyphenate 根据 hyphenate / nohyphenate 覆盖默认值。
func hyphenate(attrs map[string]string, def bool) bool {
	switch {
	case flag(attrs, "nohyphenate"):
		return false
	case flag(attrs, "hyphenate"):
		return true
	default:
		return def
	}
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		// 保留原文中 token 之间的空白
		var builder strings.Builder
		end := -1
		for _, part := range val.Expr.Parts {
			if end >= 0 && part.Pos.Offset > end {
				builder.WriteByte(' ')
			}
			builder.WriteString(part.Value)
			end = part.Pos.Offset + len(part.Raw)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
