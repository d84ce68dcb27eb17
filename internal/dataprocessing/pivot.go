package dataprocessing

import (
	"sort"

	"safetyreport/internal/config"
	"safetyreport/pkg/contracts/domain"
)

// BuildConformityTable pivots one question by region. Rows hold every region
// found in the data plus the fixed regions, sorted by name; Totals sums them.
func BuildConformityTable(ns *NormalizedSet, regionColumn, key, heading string, fixedRegions []string) domain.ConformityTable {
	counts := make(map[string]*domain.ResponseCounts)
	for _, r := range fixedRegions {
		counts[regionLabel(r)] = &domain.ResponseCounts{}
	}

	answers := answersOf(ns, key)
	for i, answer := range answers {
		region := regionLabel(ns.Cell(i, regionColumn))
		c, ok := counts[region]
		if !ok {
			c = &domain.ResponseCounts{}
			counts[region] = c
		}
		c.Add(answer, 1)
	}

	regions := make([]string, 0, len(counts))
	for r := range counts {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	table := domain.ConformityTable{
		Key:     key,
		Heading: heading,
		Rows:    make([]domain.RegionRow, 0, len(regions)),
	}
	for _, r := range regions {
		table.Rows = append(table.Rows, domain.RegionRow{Region: r, Counts: *counts[r]})
	}
	table.Totals = totalsRow(table.Rows)
	return table
}

// CombineTables sums tables element-wise, aligning rows by region.
// Conformity is derived from the summed counts, never averaged.
func CombineTables(key, heading string, tables []domain.ConformityTable) domain.ConformityTable {
	sums := make(map[string]domain.ResponseCounts)
	for _, t := range tables {
		for _, row := range t.Rows {
			sums[row.Region] = sums[row.Region].Plus(row.Counts)
		}
	}

	regions := make([]string, 0, len(sums))
	for r := range sums {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	combined := domain.ConformityTable{
		Key:     key,
		Heading: heading,
		Rows:    make([]domain.RegionRow, 0, len(regions)),
	}
	for _, r := range regions {
		combined.Rows = append(combined.Rows, domain.RegionRow{Region: r, Counts: sums[r]})
	}
	combined.Totals = totalsRow(combined.Rows)
	return combined
}

// regionLabel keeps data rows distinct from the totals row
func regionLabel(region string) string {
	if region == config.TotalLabel {
		return config.TotalRegionLabel
	}
	return region
}

func totalsRow(rows []domain.RegionRow) domain.RegionRow {
	var total domain.ResponseCounts
	for _, row := range rows {
		total = total.Plus(row.Counts)
	}
	return domain.RegionRow{Region: config.TotalLabel, Counts: total}
}
