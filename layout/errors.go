package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProgress 表示续页上一行都放不下，无法继续分页。
	ErrNoProgress = errors.New("续页未能放置任何行")
	// ErrNoColumns 表示表格没有任何列。
	ErrNoColumns = errors.New("表格没有列")
	// ErrNoUsableHeight 表示页面可用高度不大于 0。
	ErrNoUsableHeight = errors.New("页面没有可用高度")
	// ErrInvalidWidth 表示表格宽度不是正数。
	ErrInvalidWidth = errors.New("表格宽度必须大于 0")
)

// CellError 为布局失败附带行列信息，Col 为 -1 表示整行。
type CellError struct {
	Op  string
	Row int
	Col int
	Err error
}

func (e *CellError) Error() string {
	if e.Col < 0 {
		return fmt.Sprintf("%s 失败（第 %d 行）: %v", e.Op, e.Row, e.Err)
	}
	return fmt.Sprintf("%s 失败（第 %d 行，第 %d 列）: %v", e.Op, e.Row, e.Col, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
