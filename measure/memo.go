package measure

import (
	"sync"

	"github.com/ByLCY/quire/layout"
)

// Memo 缓存内部测量器的结果，键为 (text, font, size)。只在同一文档的排版过程中共享，每个文档新建一个。
type Memo struct {
	inner layout.TextMeasurer

	mu    sync.Mutex
	cache map[memoKey]layout.Extent
	hits  int
}

type memoKey struct {
	text string
	font layout.FontRef
	size float64
}

// NewMemo 包装 inner。
func NewMemo(inner layout.TextMeasurer) *Memo {
	return &Memo{inner: inner, cache: map[memoKey]layout.Extent{}}
}

func (m *Memo) Measure(text string, font layout.FontRef, size float64) (layout.Extent, error) {
	key := memoKey{text: text, font: font, size: size}
	m.mu.Lock()
	if ext, ok := m.cache[key]; ok {
		m.hits++
		m.mu.Unlock()
		return ext, nil
	}
	m.mu.Unlock()

	ext, err := m.inner.Measure(text, font, size)
	if err != nil {
		return layout.Extent{}, err
	}
	m.mu.Lock()
	m.cache[key] = ext
	m.mu.Unlock()
	return ext, nil
}

// Hits 返回命中缓存的次数。
func (m *Memo) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}
