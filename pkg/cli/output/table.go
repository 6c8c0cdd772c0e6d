package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// maxColWidth 单列最大宽度，超长单元格截断
// 依赖列表单元格可能很长，不设上限会把整张表撑垮
const maxColWidth = 48

// Table 简单表格输出
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable 创建表格
func NewTable(headers []string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		widths:  widths,
	}
}

// AddRow 添加行（超长单元格先截断再计入列宽）
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(row))
	for i, cell := range row {
		cell = truncateCell(cell)
		cells[i] = cell
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, cells)
}

// Render 渲染表格
func (t *Table) Render() {
	headerColor := color.New(color.FgCyan, color.Bold)
	for i, h := range t.headers {
		headerColor.Printf("%-*s  ", t.widths[i], h)
	}
	fmt.Println()

	for i := range t.headers {
		fmt.Print(strings.Repeat("-", t.widths[i]))
		fmt.Print("  ")
	}
	fmt.Println()

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(t.widths) {
				fmt.Printf("%-*s  ", t.widths[i], cell)
			}
		}
		fmt.Println()
	}
}

// truncateCell 按rune截断超宽单元格并追加省略号
func truncateCell(cell string) string {
	runes := []rune(cell)
	if len(runes) <= maxColWidth {
		return cell
	}
	return string(runes[:maxColWidth-3]) + "..."
}
