package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"safetyreport/internal/config"
	apperrors "safetyreport/internal/errors"
	"safetyreport/internal/infrastructure"
	"safetyreport/pkg/contracts/domain"
)

var (
	analysisHeader = []string{
		"Questions", "Yes", "Yes %", "No", "No %", "N/A", "N/A %",
		"Blank", "Blank %", "Other", "Other %", "Total",
	}
	conformityHeader = []string{
		"Region", "Yes", "No", "N/A", "Blank", "Other", "Total", "% in Conformity",
	}
)

// Options controls the workbook layout
type Options struct {
	// BlockSpacing is the minimum row distance between table titles on the
	// Safety sheet
	BlockSpacing int
}

// Workbook is a rendered report held in memory until saved
type Workbook struct {
	file   *excelize.File
	opts   Options
	styles styles
	logger *slog.Logger
}

type styles struct {
	percent       int
	date          int
	title         int
	combinedTitle int
}

// Render lays out the three report sheets
func Render(report *domain.AssessmentReport, opts Options) (*Workbook, error) {
	if opts.BlockSpacing <= 0 {
		opts.BlockSpacing = config.DefaultBlockSpacing
	}

	w := &Workbook{
		file:   excelize.NewFile(),
		opts:   opts,
		logger: infrastructure.WithComponent(nil, "exporter"),
	}

	if err := w.createStyles(); err != nil {
		w.file.Close()
		return nil, err
	}

	steps := []struct {
		sheet string
		fn    func(*domain.AssessmentReport) error
	}{
		{config.SheetAnalysis, w.writeAnalysis},
		{config.SheetSafety, w.writeSafety},
		{config.SheetRawData, w.writeRawData},
	}
	for _, s := range steps {
		if _, err := w.file.NewSheet(s.sheet); err != nil {
			w.file.Close()
			return nil, renderError(s.sheet, err)
		}
		if err := s.fn(report); err != nil {
			w.file.Close()
			return nil, renderError(s.sheet, err)
		}
	}

	if err := w.file.DeleteSheet("Sheet1"); err != nil {
		w.file.Close()
		return nil, renderError("Sheet1", err)
	}
	if idx, err := w.file.GetSheetIndex(config.SheetAnalysis); err == nil {
		w.file.SetActiveSheet(idx)
	}

	if err := w.file.SetDocProps(&excelize.DocProperties{
		Title:       "Quarterly Safety Assessment",
		Subject:     fmt.Sprintf("%s to %s", report.From.Format(config.DateLayout), report.To.Format(config.DateLayout)),
		Creator:     config.AppName,
		Description: fmt.Sprintf("%d records, run %s", report.RecordCount, report.RunID),
		Created:     report.GeneratedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		w.file.Close()
		return nil, renderError("properties", err)
	}

	return w, nil
}

// File exposes the underlying workbook
func (w *Workbook) File() *excelize.File {
	return w.file
}

// SaveAs writes the workbook to path, creating parent directories
func (w *Workbook) SaveAs(path string) error {
	if !config.IsWorkbookPath(path) {
		return apperrors.NewValidationError(fmt.Sprintf("output file %q must have the %s extension", path, config.WorkbookExt))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewStorageError("create output directory", err).WithContext("dir", dir)
		}
	}
	if err := w.file.SaveAs(path); err != nil {
		return apperrors.NewStorageError("save workbook", err).WithContext("path", path)
	}

	w.logger.Info("Workbook saved", slog.String("path", path))
	return nil
}

// Close releases the workbook's temporary resources
func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) createStyles() error {
	var err error
	if w.styles.percent, err = w.file.NewStyle(&excelize.Style{NumFmt: numFmtPercent}); err != nil {
		return renderError("styles", err)
	}
	custom := dateFormat
	if w.styles.date, err = w.file.NewStyle(&excelize.Style{CustomNumFmt: &custom}); err != nil {
		return renderError("styles", err)
	}
	if w.styles.title, err = w.file.NewStyle(titleStyle(titleFill)); err != nil {
		return renderError("styles", err)
	}
	if w.styles.combinedTitle, err = w.file.NewStyle(titleStyle(combinedFill)); err != nil {
		return renderError("styles", err)
	}
	return nil
}

func titleStyle(fill string) *excelize.Style {
	return &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: titleFont},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}
}

// writeAnalysis writes the per-question distribution as one Excel table
func (w *Workbook) writeAnalysis(report *domain.AssessmentReport) error {
	sheet := config.SheetAnalysis
	f := w.file

	if err := f.SetSheetRow(sheet, "A1", &analysisHeader); err != nil {
		return err
	}
	for i, d := range report.Distribution {
		row := []any{d.Question}
		for _, r := range domain.Responses {
			row = append(row, d.Counts.Get(r), d.Percent(r))
		}
		row = append(row, d.Total)
		if err := f.SetSheetRow(sheet, cellName(1, i+2), &row); err != nil {
			return err
		}
	}

	lastRow := len(report.Distribution) + 1
	if lastRow > 1 {
		for col := 3; col <= 11; col += 2 {
			if err := f.SetCellStyle(sheet, cellName(col, 2), cellName(col, lastRow), w.styles.percent); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return err
	}
	return w.addTable(sheet, "SafetyAnalysis", "TableStyleLight9", 1, lastRow, len(analysisHeader))
}

// writeSafety writes one titled block per safety question, then the
// combined block
func (w *Workbook) writeSafety(report *domain.AssessmentReport) error {
	sheet := config.SheetSafety

	tables := append(append([]domain.ConformityTable(nil), report.Tables...), report.Combined)
	blocks := layoutBlocks(tables, w.opts.BlockSpacing)

	for i, t := range tables {
		combined := i == len(tables)-1
		titleID, tableStyle, name := w.styles.title, "TableStyleLight9", tableName(t.Key)
		if combined {
			titleID, tableStyle, name = w.styles.combinedTitle, "TableStyleMedium1", "CombinedSafety"
		}
		if err := w.writeConformityBlock(sheet, t, blocks[i], name, titleID, tableStyle); err != nil {
			return fmt.Errorf("table %s: %w", t.Key, err)
		}
	}

	f := w.file
	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return err
	}
	conformityCol := columnName(len(conformityHeader))
	return f.SetColWidth(sheet, conformityCol, conformityCol, 15)
}

func (w *Workbook) writeConformityBlock(sheet string, t domain.ConformityTable, b block, name string, titleID int, tableStyle string) error {
	f := w.file
	width := len(conformityHeader)

	titleCell := cellName(1, b.TitleRow)
	if err := f.SetCellValue(sheet, titleCell, t.Heading); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, titleCell, cellName(width, b.TitleRow)); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, titleCell, cellName(width, b.TitleRow), titleID); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, cellName(1, b.HeaderRow), &conformityHeader); err != nil {
		return err
	}
	rows := append(append([]domain.RegionRow(nil), t.Rows...), t.Totals)
	for i, r := range rows {
		values := []any{r.Region}
		for _, resp := range domain.Responses {
			values = append(values, r.Counts.Get(resp))
		}
		values = append(values, r.Total(), r.Conformity())
		if err := f.SetSheetRow(sheet, cellName(1, b.HeaderRow+1+i), &values); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(sheet, cellName(width, b.HeaderRow+1), cellName(width, b.LastRow), w.styles.percent); err != nil {
		return err
	}
	return w.addTable(sheet, name, tableStyle, b.HeaderRow, b.LastRow, width)
}

// writeRawData streams every fetched record with blank-filled values
func (w *Workbook) writeRawData(report *domain.AssessmentReport) error {
	rs := report.Raw
	if rs == nil {
		rs = domain.NewRecordSet(nil, report.From, report.To)
	}

	sw, err := w.file.NewStreamWriter(config.SheetRawData)
	if err != nil {
		return err
	}

	for i, width := range autofitWidths(rs) {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	header := make([]any, len(rs.Columns))
	for i, c := range rs.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, rec := range rs.Records {
		row := make([]any, len(rs.Columns))
		for j := range rs.Columns {
			v := domain.NullValue()
			if j < len(rec.Values) {
				v = rec.Values[j]
			}
			value := rawCell(v)
			if _, isDate := value.(time.Time); isDate {
				row[j] = excelize.Cell{StyleID: w.styles.date, Value: value}
			} else {
				row[j] = value
			}
		}
		if err := sw.SetRow(cellName(1, i+2), row); err != nil {
			return err
		}
	}

	return sw.Flush()
}

// addTable registers an Excel table over header row first..last
func (w *Workbook) addTable(sheet, name, style string, first, last, width int) error {
	stripes := true
	return w.file.AddTable(sheet, &excelize.Table{
		Range:          fmt.Sprintf("%s:%s", cellName(1, first), cellName(width, last)),
		Name:           name,
		StyleName:      style,
		ShowRowStripes: &stripes,
	})
}

// tableName derives an Excel table name from a column key. Table names may
// only hold letters, digits and underscores.
func tableName(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "T_" + name
	}
	return name
}

func renderError(sheet string, err error) error {
	return apperrors.NewStorageError("render workbook", err).WithContext("sheet", sheet)
}
