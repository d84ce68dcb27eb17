package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetyreport/pkg/contracts/domain"
)

var fixedRegions = []string{"Beech Street", "Kent Co.", "Sussex Co.", "UP"}

func regionsOf(t domain.ConformityTable) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Region
	}
	return out
}

func TestBuildConformityTable(t *testing.T) {
	rs := records([]string{"7Region", "SA1SA"},
		[]any{"UP", "Yes"},
		[]any{"UP", "No"},
		[]any{"UP", "yes"},
		[]any{"Kent Co.", "N/A"},
		[]any{"Appoquinimink", "Yes"},
		[]any{nil, "Unsure"},
	)
	ns := Normalize(rs, []string{"SA1SA"})

	table := BuildConformityTable(ns, "7Region", "SA1SA", "SA1. heading", fixedRegions)

	assert.Equal(t, "SA1SA", table.Key)
	assert.Equal(t, "SA1. heading", table.Heading)
	assert.Equal(t, []string{"Appoquinimink", "Beech Street", "Blank", "Kent Co.", "Sussex Co.", "UP"}, regionsOf(table))

	up, ok := table.Row("UP")
	require.True(t, ok)
	assert.Equal(t, domain.ResponseCounts{Yes: 2, No: 1}, up.Counts)
	assert.Equal(t, 3, up.Total())
	assert.InDelta(t, 2.0/3.0, up.Conformity(), 1e-9)

	beech, ok := table.Row("Beech Street")
	require.True(t, ok)
	assert.Zero(t, beech.Total())
	assert.Zero(t, beech.Conformity())

	blank, ok := table.Row("Blank")
	require.True(t, ok)
	assert.Equal(t, 1, blank.Counts.Other)

	assert.Equal(t, "Total", table.Totals.Region)
	assert.Equal(t, domain.ResponseCounts{Yes: 3, No: 1, NA: 1, Other: 1}, table.Totals.Counts)
	assert.Equal(t, 6, table.Totals.Total())
	assert.InDelta(t, 0.75, table.Totals.Conformity(), 1e-9)
}

func TestBuildConformityTable_RegionNamedTotal(t *testing.T) {
	rs := records([]string{"7Region", "SA1SA"},
		[]any{"Total", "Yes"},
		[]any{"UP", "No"},
	)
	ns := Normalize(rs, []string{"SA1SA"})

	table := BuildConformityTable(ns, "7Region", "SA1SA", "SA1. heading", nil)
	assert.Equal(t, []string{"Total (region)", "UP"}, regionsOf(table))
	assert.Equal(t, "Total", table.Totals.Region)

	row, ok := table.Row("Total (region)")
	require.True(t, ok)
	assert.Equal(t, 1, row.Counts.Yes)

	combined := CombineTables("combined", "COMBINED", []domain.ConformityTable{table, table})
	assert.Equal(t, []string{"Total (region)", "UP"}, regionsOf(combined))
	assert.Equal(t, domain.ResponseCounts{Yes: 2, No: 2}, combined.Totals.Counts)
}

func TestBuildConformityTable_ConformityEdgeCases(t *testing.T) {
	rs := records([]string{"7Region", "SA1SA"},
		[]any{"UP", "No"},
		[]any{"UP", "N/A"},
		[]any{"Kent Co.", "Yes"},
	)
	ns := Normalize(rs, []string{"SA1SA"})

	table := BuildConformityTable(ns, "7Region", "SA1SA", "", fixedRegions)

	// No Yes answers means 0, even with No answers present
	up, _ := table.Row("UP")
	assert.Zero(t, up.Conformity())

	kent, _ := table.Row("Kent Co.")
	assert.Equal(t, 1.0, kent.Conformity())
}

func TestBuildConformityTable_NoRecords(t *testing.T) {
	ns := Normalize(records([]string{"7Region", "SA1SA"}), []string{"SA1SA"})

	table := BuildConformityTable(ns, "7Region", "SA1SA", "", fixedRegions)
	assert.Equal(t, fixedRegions, regionsOf(table))
	assert.Zero(t, table.Totals.Total())
}

func TestCombineTables(t *testing.T) {
	rs := records([]string{"7Region", "SA1SA", "SA2SAChld"},
		[]any{"UP", "Yes", "No"},
		[]any{"UP", "Yes", "Yes"},
		[]any{"Kent Co.", "No", "Blank"},
		[]any{"Extra", "Yes", "Maybe"},
	)
	ns := Normalize(rs, []string{"SA1SA", "SA2SAChld"})

	t1 := BuildConformityTable(ns, "7Region", "SA1SA", "", fixedRegions)
	t2 := BuildConformityTable(ns, "7Region", "SA2SAChld", "", fixedRegions)

	combined := CombineTables("CombinedSafety", "COMBINED SAFETY ASSESSMENT", []domain.ConformityTable{t1, t2})

	assert.Equal(t, "COMBINED SAFETY ASSESSMENT", combined.Heading)
	assert.Equal(t, []string{"Beech Street", "Extra", "Kent Co.", "Sussex Co.", "UP"}, regionsOf(combined))

	up, _ := combined.Row("UP")
	assert.Equal(t, domain.ResponseCounts{Yes: 3, No: 1}, up.Counts)
	assert.InDelta(t, 0.75, up.Conformity(), 1e-9)

	extra, _ := combined.Row("Extra")
	assert.Equal(t, domain.ResponseCounts{Yes: 1, Other: 1}, extra.Counts)

	// Totals row equals the sum of the per-table totals
	assert.Equal(t, t1.Totals.Counts.Plus(t2.Totals.Counts), combined.Totals.Counts)
	assert.InDelta(t, 4.0/6.0, combined.Totals.Conformity(), 1e-9)
}

func TestCombineTables_Empty(t *testing.T) {
	combined := CombineTables("CombinedSafety", "", nil)
	assert.Empty(t, combined.Rows)
	assert.Zero(t, combined.Totals.Total())
}
