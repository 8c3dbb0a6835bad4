package compose

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/layout"
)

// handleTable 把 table 语句转换为行与样式，交给 layout.LayoutTable 排版与分页。
func (b *builder) handleTable(cmd *dsl.Command, r *region) error {
	if cmd.Block == nil {
		return fmt.Errorf("table 语句缺少内容")
	}
	styleName, attrs := parseArgs(cmd.Args, true)
	attrs = mergeStyleAttributes(styleName, attrs, b.res.Styles)

	style, err := b.tableStyle(attrs)
	if err != nil {
		return err
	}
	rows, err := b.tableRows(cmd.Block, r.page)
	if err != nil {
		return err
	}
	width, err := lengthOr(attrs, "width", r.width, r.width)
	if err != nil {
		return err
	}
	x, err := lengthOr(attrs, "x", r.width, r.x)
	if err != nil {
		return err
	}
	top, absolute, err := length(attrs, "y", r.top)
	if err != nil {
		return err
	}
	if !absolute {
		top = r.cursor
	}

	var host layout.PageHost
	if r.host != nil {
		host = r.host
	}
	spec := layout.TableSpec{
		Rows:  rows,
		Width: width,
		X:     x,
		Frame: layout.PageFrame{Top: top, Bottom: r.bottom},
		Style: style,
	}
	res, err := layout.LayoutTable(r.canvas, host, spec, b.measurer, layout.WithLogger(b.log))
	if err != nil {
		return err
	}
	if !absolute || res.Pages > 1 {
		r.cursor = res.Cursor - b.set.BlockSpacing
	}
	return nil
}

// tableStyle 在默认表格样式上应用 table 语句的属性。
func (b *builder) tableStyle(attrs map[string]string) (layout.TableStyle, error) {
	s := b.set.Table
	if s.Font == "" {
		s.Font = b.set.Font
	}
	s.Font = b.res.font(attrs["font"], s.Font)
	s.Hyphenate = hyphenate(attrs, s.Hyphenate)

	var err error
	for key, dst := range map[string]*float64{
		"border":  &s.BorderWidth,
		"padding": &s.CellPadding,
		"size":    &s.FontSize,
	} {
		if *dst, err = lengthOr(attrs, key, 0, *dst); err != nil {
			return s, err
		}
	}
	if s.FontSize <= 0 {
		return s, fmt.Errorf("表格字号必须大于 0")
	}
	if v, ok := attrs["spacing"]; ok {
		spec, err := layout.ParseSpacing(v)
		if err != nil {
			return s, err
		}
		s.LineSpacing = spec.Resolve(s.FontSize)
	}
	if v, ok := attrs["border-color"]; ok {
		if s.BorderColor, err = b.res.color(v); err != nil {
			return s, err
		}
	}
	if v, ok := attrs["color"]; ok {
		if s.TextColor, err = b.res.color(v); err != nil {
			return s, err
		}
	}
	if s.HeaderBackground, err = b.res.optionalColor(attrs, "header-bg", s.HeaderBackground); err != nil {
		return s, err
	}
	if s.EvenRowBackground, err = b.res.optionalColor(attrs, "even-bg", s.EvenRowBackground); err != nil {
		return s, err
	}
	if s.OddRowBackground, err = b.res.optionalColor(attrs, "odd-bg", s.OddRowBackground); err != nil {
		return s, err
	}
	return s, nil
}

// tableRows 读取 row 语句：row [header] [break-before] [height H] { cell ... }。
func (b *builder) tableRows(block *dsl.Block, page int) ([]layout.Row, error) {
	var rows []layout.Row
	for _, stmt := range block.Statements {
		if stmt.Command == nil || stmt.Command.Name != "row" {
			continue
		}
		cmd := stmt.Command
		_, attrs := parseArgs(cmd.Args, false)
		row := layout.Row{
			Header:      flag(attrs, "header"),
			BreakBefore: flag(attrs, "break-before"),
		}
		var err error
		if row.Height, err = lengthOr(attrs, "height", 0, 0); err != nil {
			return nil, fmt.Errorf("第 %d 行 row: %w", cmd.Pos.Line, err)
		}
		if cmd.Block != nil {
			for _, cs := range cmd.Block.Statements {
				if cs.Command == nil || cs.Command.Name != "cell" {
					continue
				}
				cell, err := b.tableCell(cs.Command, row.Header, page)
				if err != nil {
					return nil, fmt.Errorf("第 %d 行 cell: %w", cs.Command.Pos.Line, err)
				}
				row.Cells = append(row.Cells, cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *builder) tableCell(cmd *dsl.Command, header bool, page int) (layout.Cell, error) {
	styleName, attrs := parseArgs(cmd.Args, true)
	attrs = mergeStyleAttributes(styleName, attrs, b.res.Styles)

	cell := layout.NewCell(norm.NFC.String(b.expand(extractText(cmd.Block), page)))
	cell.Header = header
	var err error
	if cell.Colspan, err = intAttr(attrs, "colspan", 1); err != nil {
		return cell, err
	}
	if cell.Rowspan, err = intAttr(attrs, "rowspan", 1); err != nil {
		return cell, err
	}
	if v, ok := attrs["align"]; ok {
		if cell.HAlign, err = layout.ParseHAlign(v); err != nil {
			return cell, err
		}
	}
	if v, ok := attrs["valign"]; ok {
		if cell.VAlign, err = layout.ParseVAlign(v); err != nil {
			return cell, err
		}
	}
	if cell.Width, err = lengthOr(attrs, "width", 0, 0); err != nil {
		return cell, err
	}
	if cell.FontSize, err = lengthOr(attrs, "size", 0, 0); err != nil {
		return cell, err
	}
	if v, ok := attrs["font"]; ok {
		cell.Font = b.res.font(v, "")
	}
	if cell.Background, err = b.res.optionalColor(attrs, "bg", nil); err != nil {
		return cell, err
	}
	if cell.TextColor, err = b.res.optionalColor(attrs, "color", nil); err != nil {
		return cell, err
	}
	if v, ok := attrs["border"]; ok {
		if strings.EqualFold(v, "none") {
			cell.BorderWidth = -1
		} else if cell.BorderWidth, err = lengthOr(attrs, "border", 0, 0); err != nil {
			return cell, err
		}
	}
	for key, dst := range map[string]*float64{
		"border-top":    &cell.Edges.Top,
		"border-right":  &cell.Edges.Right,
		"border-bottom": &cell.Edges.Bottom,
		"border-left":   &cell.Edges.Left,
	} {
		if *dst, err = lengthOr(attrs, key, 0, 0); err != nil {
			return cell, err
		}
	}
	return cell, nil
}
