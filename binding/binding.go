package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// PageNumberVar 是页码占位符的名称。
const PageNumberVar = "PAGE_NUMBER"

// Scope 是插值时可见的数据，Vars 中的同名变量优先于 Data 中的路径。
type Scope struct {
	Data any
	Vars map[string]string
}

// WithPage 返回附带页码变量的副本。
func (s Scope) WithPage(n int) Scope {
	vars := make(map[string]string, len(s.Vars)+1)
	for k, v := range s.Vars {
		vars[k] = v
	}
	vars[PageNumberVar] = strconv.Itoa(n)
	return Scope{Data: s.Data, Vars: vars}
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则返回原占位符。
func Interpolate(text string, data any) string {
	return Expand(text, Scope{Data: data})
}

// Expand 与 Interpolate 相同，但先查找 scope.Vars。
func Expand(text string, scope Scope) string {
	if scope.Data == nil && len(scope.Vars) == 0 {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if v, ok := scope.Vars[path]; ok {
			return v
		}
		if scope.Data == nil {
			return match
		}
		if val, ok := resolvePath(scope.Data, path); ok {
			return format(val)
		}
		return match
	})
}

// step 是路径中的一级：字段名或数组下标。
type step struct {
	key   string
	index int
}

// parsePath 把 a.b[0][1].c 拆成逐级访问的 step。
func parsePath(path string) ([]step, bool) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, indexed := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, step{key: name, index: -1})
		}
		if !indexed {
			if name == "" {
				return nil, false
			}
			continue
		}
		for _, part := range strings.Split("["+rest, "[")[1:] {
			num, ok := strings.CutSuffix(part, "]")
			if !ok {
				return nil, false
			}
			idx, err := strconv.Atoi(num)
			if err != nil || idx < 0 {
				return nil, false
			}
			steps = append(steps, step{index: idx})
		}
	}
	return steps, len(steps) > 0
}

func resolvePath(data any, path string) (any, bool) {
	steps, ok := parsePath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, st := range steps {
		if st.index < 0 {
			current, ok = descendMap(current, st.key)
		} else {
			current, ok = descendArray(current, st.index)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}

// format 输出插值结果，JSON 数字不使用科学计数法。
func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
