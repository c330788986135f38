package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"eaisdo/model"
)

const SheetName = "Пользователи и узлы"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("export: no nodes to export")

// Headers are the column titles, in column order.
var Headers = []string{
	"Код региона",
	"Регион",
	"Округ",
	"Имя узла",
	"Техническое решение",
	"Статус",
}

var columnWidths = []float64{14, 30, 22, 20, 40, 18}

// FileName is the download name for an export made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("пользователи_и_узлы_%s.xlsx", t.Format("2006-01-02"))
}

func row(n model.Node) []any {
	return []any{n.RegionCode, n.Region, n.District, n.NodeName, n.TechnicalSolution, n.Status.Label()}
}

// WriteNodes renders nodes as a single-sheet workbook.
func WriteNodes(w io.Writer, nodes []model.Node) error {
	if len(nodes) == 0 {
		return ErrEmpty
	}
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet rather than adding a second one.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("export: name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("export: stream writer: %w", err)
	}
	for i, width := range columnWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fmt.Errorf("export: column width: %w", err)
		}
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("export: header row: %w", err)
	}
	for i, n := range nodes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(n)); err != nil {
			return fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}
