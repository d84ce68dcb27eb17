package exporter

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"safetyreport/internal/config"
	apperrors "safetyreport/internal/errors"
	"safetyreport/pkg/contracts/domain"
)

func sampleReport() *domain.AssessmentReport {
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)

	raw := domain.NewRecordSet([]string{"ID", "3Review Date", "7Region", "SA1SA"}, from, to)
	raw.Append([]domain.Value{
		domain.IntValue(1),
		domain.TimeValue(time.Date(2023, 2, 14, 0, 0, 0, 0, time.UTC)),
		domain.StringValue("UP"),
		domain.StringValue("Yes"),
	})
	raw.Append([]domain.Value{
		domain.IntValue(2),
		domain.TimeValue(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)),
		domain.NullValue(),
		domain.StringValue(""),
	})

	sa1 := domain.ConformityTable{
		Key:     "SA1SA",
		Heading: config.SafetyQuestions[0].Heading,
		Rows: []domain.RegionRow{
			{Region: "Beech Street"},
			{Region: "Kent Co.", Counts: domain.ResponseCounts{No: 1}},
			{Region: "Sussex Co."},
			{Region: "UP", Counts: domain.ResponseCounts{Yes: 2, No: 1}},
		},
		Totals: domain.RegionRow{Region: "Total", Counts: domain.ResponseCounts{Yes: 2, No: 2}},
	}
	sa2 := domain.ConformityTable{
		Key:     "SA2SAChld",
		Heading: config.SafetyQuestions[1].Heading,
		Rows: []domain.RegionRow{
			{Region: "Beech Street"},
			{Region: "Kent Co."},
			{Region: "Sussex Co."},
			{Region: "UP", Counts: domain.ResponseCounts{Blank: 3}},
		},
		Totals: domain.RegionRow{Region: "Total", Counts: domain.ResponseCounts{Blank: 3}},
	}
	combined := domain.ConformityTable{
		Key:     "CombinedSafety",
		Heading: config.CombinedHeading,
		Rows: []domain.RegionRow{
			{Region: "Beech Street"},
			{Region: "Kent Co.", Counts: domain.ResponseCounts{No: 1}},
			{Region: "Sussex Co."},
			{Region: "UP", Counts: domain.ResponseCounts{Yes: 2, No: 1, Blank: 3}},
		},
		Totals: domain.RegionRow{Region: "Total", Counts: domain.ResponseCounts{Yes: 2, No: 2, Blank: 3}},
	}

	return &domain.AssessmentReport{
		RunID:       "run-1",
		From:        from,
		To:          to,
		GeneratedAt: time.Date(2023, 4, 2, 9, 0, 0, 0, time.UTC),
		RecordCount: 2,
		Distribution: []domain.QuestionDistribution{
			{Question: "P1PerpInformed", Counts: domain.ResponseCounts{Yes: 1, Blank: 1}, Total: 2},
			{Question: "SA1SA", Counts: domain.ResponseCounts{Yes: 1, Blank: 1}, Total: 2},
		},
		Tables:   []domain.ConformityTable{sa1, sa2},
		Combined: combined,
		Raw:      raw,
	}
}

func saveAndOpen(t *testing.T, report *domain.AssessmentReport, opts Options) *excelize.File {
	t.Helper()

	wb, err := Render(report, opts)
	require.NoError(t, err)
	defer wb.Close()

	path := filepath.Join(t.TempDir(), "out", "Safety Assessment.xlsx")
	require.NoError(t, wb.SaveAs(path))

	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func TestRender_Sheets(t *testing.T) {
	f := saveAndOpen(t, sampleReport(), Options{})

	assert.Equal(t, []string{config.SheetAnalysis, config.SheetSafety, config.SheetRawData}, f.GetSheetList())

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "1/1/2023 to 3/31/2023", props.Subject)
	assert.Equal(t, config.AppName, props.Creator)
}

func TestRender_SafetyAnalysis(t *testing.T) {
	f := saveAndOpen(t, sampleReport(), Options{})
	sheet := config.SheetAnalysis

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, analysisHeader, rows[0])
	assert.Equal(t, "P1PerpInformed", rows[1][0])
	assert.Equal(t, "1", cellValue(t, f, sheet, "B2"))
	assert.Equal(t, "0.5", cellValue(t, f, sheet, "C2"))
	assert.Equal(t, "1", cellValue(t, f, sheet, "H2"))
	assert.Equal(t, "2", cellValue(t, f, sheet, "L2"))

	tables, err := f.GetTables(sheet)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "SafetyAnalysis", tables[0].Name)
	assert.Equal(t, "A1:L3", tables[0].Range)
	assert.Equal(t, "TableStyleLight9", tables[0].StyleName)

	width, err := f.GetColWidth(sheet, "A")
	require.NoError(t, err)
	assert.Equal(t, 20.0, width)

	for _, col := range []string{"C", "E", "G", "I", "K"} {
		styleID, err := f.GetCellStyle(sheet, col+"2")
		require.NoError(t, err)
		style, err := f.GetStyle(styleID)
		require.NoError(t, err)
		assert.Equal(t, numFmtPercent, style.NumFmt, "column %s", col)
	}
}

func TestRender_Safety(t *testing.T) {
	f := saveAndOpen(t, sampleReport(), Options{BlockSpacing: 10})
	sheet := config.SheetSafety

	assert.Equal(t, config.SafetyQuestions[0].Heading, cellValue(t, f, sheet, "A2"))
	assert.Equal(t, "Region", cellValue(t, f, sheet, "A4"))
	assert.Equal(t, "% in Conformity", cellValue(t, f, sheet, "H4"))
	assert.Equal(t, "UP", cellValue(t, f, sheet, "A8"))
	assert.Equal(t, "2", cellValue(t, f, sheet, "B8"))
	assert.Equal(t, "3", cellValue(t, f, sheet, "G8"))
	assert.Equal(t, "Total", cellValue(t, f, sheet, "A9"))
	assert.Equal(t, "0.5", cellValue(t, f, sheet, "H9"))

	assert.Equal(t, config.SafetyQuestions[1].Heading, cellValue(t, f, sheet, "A12"))
	assert.Equal(t, config.CombinedHeading, cellValue(t, f, sheet, "A22"))

	merged, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	var ranges []string
	for _, m := range merged {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"A2:H2", "A12:H12", "A22:H22"}, ranges)

	tables, err := f.GetTables(sheet)
	require.NoError(t, err)
	byName := map[string]excelize.Table{}
	for _, tbl := range tables {
		byName[tbl.Name] = tbl
	}
	require.Len(t, byName, 3)
	assert.Equal(t, "A4:H9", byName["SA1SA"].Range)
	assert.Equal(t, "TableStyleLight9", byName["SA1SA"].StyleName)
	assert.Equal(t, "A14:H19", byName["SA2SAChld"].Range)
	assert.Equal(t, "A24:H29", byName["CombinedSafety"].Range)
	assert.Equal(t, "TableStyleMedium1", byName["CombinedSafety"].StyleName)

	titleID, err := f.GetCellStyle(sheet, "A2")
	require.NoError(t, err)
	title, err := f.GetStyle(titleID)
	require.NoError(t, err)
	assert.True(t, title.Font.Bold)
	require.Len(t, title.Fill.Color, 1)
	assert.True(t, strings.HasSuffix(strings.ToUpper(title.Fill.Color[0]), titleFill))

	combinedID, err := f.GetCellStyle(sheet, "A22")
	require.NoError(t, err)
	combinedStyle, err := f.GetStyle(combinedID)
	require.NoError(t, err)
	require.Len(t, combinedStyle.Fill.Color, 1)
	assert.True(t, strings.HasSuffix(strings.ToUpper(combinedStyle.Fill.Color[0]), combinedFill))

	width, err := f.GetColWidth(sheet, "H")
	require.NoError(t, err)
	assert.Equal(t, 15.0, width)
}

func TestRender_RawData(t *testing.T) {
	f := saveAndOpen(t, sampleReport(), Options{})
	sheet := config.SheetRawData

	assert.Equal(t, "ID", cellValue(t, f, sheet, "A1"))
	assert.Equal(t, "7Region", cellValue(t, f, sheet, "C1"))
	assert.Equal(t, "UP", cellValue(t, f, sheet, "C2"))
	assert.Equal(t, "Blank", cellValue(t, f, sheet, "C3"))
	assert.Equal(t, "Blank", cellValue(t, f, sheet, "D3"))

	styleID, err := f.GetCellStyle(sheet, "B2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, dateFormat, *style.CustomNumFmt)

	width, err := f.GetColWidth(sheet, "B")
	require.NoError(t, err)
	assert.Equal(t, 14.0, width)

	panes, err := f.GetPanes(sheet)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

func TestRender_NoRecords(t *testing.T) {
	report := sampleReport()
	report.Raw = domain.NewRecordSet(report.Raw.Columns, report.From, report.To)
	report.RecordCount = 0

	f := saveAndOpen(t, report, Options{})

	rows, err := f.GetRows(config.SheetRawData)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"ID", "3Review Date", "7Region", "SA1SA"}, rows[0])
}

func TestSaveAs_RequiresXLSX(t *testing.T) {
	wb, err := Render(sampleReport(), Options{})
	require.NoError(t, err)
	defer wb.Close()

	err = wb.SaveAs(filepath.Join(t.TempDir(), "report.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestSaveAs_UpperCaseExtension(t *testing.T) {
	wb, err := Render(sampleReport(), Options{})
	require.NoError(t, err)
	defer wb.Close()

	path := filepath.Join(t.TempDir(), "Report.XLSX")
	require.NoError(t, wb.SaveAs(path))
	assert.FileExists(t, path)
}
