package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// applySheetFormatting: жирная шапка в строке headerRow, автофильтр по ней
// и примерная ширина колонок по содержимому.
func applySheetFormatting(f *excelize.File, sheet string, headerRow int) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return nil
	}
	last := columnName(cols)

	if style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	}); err == nil {
		_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", last, headerRow), style)
	}
	_ = f.AutoFilter(sheet, fmt.Sprintf("A%d:%s%d", headerRow, last, headerRow), nil)

	widths := make([]float64, cols)
	for c := range widths {
		widths[c] = 10
	}
	// строки выше шапки (заголовок отчёта) в расчёт ширины не берём
	for rIdx := headerRow - 1; rIdx < len(rows); rIdx++ {
		for cIdx, v := range rows[rIdx] {
			w := float64(visualLen(v)) * 1.1
			if rIdx == headerRow-1 {
				w += 1.5
			}
			if w > 60 {
				w = 60
			}
			if w > widths[cIdx] {
				widths[cIdx] = w
			}
		}
	}
	for i, w := range widths {
		col := columnName(i + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

// AppointmentsFilename — имя файла выгрузки для заголовка Content-Disposition.
func AppointmentsFilename(teacherName string, at time.Time) string {
	return sanitizeFileName(fmt.Sprintf("Appointments - %s - %s.xlsx", cleanName(teacherName), at.Format("2006-01-02")))
}

// 1 -> A; 27 -> AA
func columnName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func visualLen(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return invalidFileRe.ReplaceAllString(s, "_")
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "teacher"
	}
	return s
}
