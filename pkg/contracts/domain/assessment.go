package domain

import (
	"time"
)

// Response is one of the fixed answer categories used for analysis
type Response string

const (
	ResponseYes   Response = "Yes"
	ResponseNo    Response = "No"
	ResponseNA    Response = "N/A"
	ResponseBlank Response = "Blank"
	ResponseOther Response = "Other"
)

// Responses lists the answer categories in report column order
var Responses = []Response{ResponseYes, ResponseNo, ResponseNA, ResponseBlank, ResponseOther}

// ResponseCounts holds one count per answer category
type ResponseCounts struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	NA    int `json:"na"`
	Blank int `json:"blank"`
	Other int `json:"other"`
}

// Add increments the counter of the given category
func (c *ResponseCounts) Add(r Response, n int) {
	switch r {
	case ResponseYes:
		c.Yes += n
	case ResponseNo:
		c.No += n
	case ResponseNA:
		c.NA += n
	case ResponseBlank:
		c.Blank += n
	default:
		c.Other += n
	}
}

// Get returns the counter of the given category
func (c ResponseCounts) Get(r Response) int {
	switch r {
	case ResponseYes:
		return c.Yes
	case ResponseNo:
		return c.No
	case ResponseNA:
		return c.NA
	case ResponseBlank:
		return c.Blank
	}
	return c.Other
}

// Plus returns the element-wise sum of two counters
func (c ResponseCounts) Plus(o ResponseCounts) ResponseCounts {
	return ResponseCounts{
		Yes:   c.Yes + o.Yes,
		No:    c.No + o.No,
		NA:    c.NA + o.NA,
		Blank: c.Blank + o.Blank,
		Other: c.Other + o.Other,
	}
}

// Total is the sum over all categories
func (c ResponseCounts) Total() int {
	return c.Yes + c.No + c.NA + c.Blank + c.Other
}

// Conformity is Yes / (Yes + No), or 0 when there are no Yes answers
func (c ResponseCounts) Conformity() float64 {
	if c.Yes == 0 {
		return 0
	}
	return float64(c.Yes) / float64(c.Yes+c.No)
}

// QuestionDistribution is one row of the Safety Analysis sheet
type QuestionDistribution struct {
	Question string         `json:"question"`
	Counts   ResponseCounts `json:"counts"`
	Total    int            `json:"total"`
}

// Percent returns the share of the given category over Total
func (q QuestionDistribution) Percent(r Response) float64 {
	if q.Total == 0 {
		return 0
	}
	return float64(q.Counts.Get(r)) / float64(q.Total)
}

// RegionRow is one region line of a conformity table
type RegionRow struct {
	Region string         `json:"region"`
	Counts ResponseCounts `json:"counts"`
}

// Total is the number of answers recorded for the region
func (r RegionRow) Total() int {
	return r.Counts.Total()
}

// Conformity is the region's Yes / (Yes + No) ratio
func (r RegionRow) Conformity() float64 {
	return r.Counts.Conformity()
}

// ConformityTable is the regional pivot for a single safety question,
// or the combined pivot across all of them
type ConformityTable struct {
	Key     string      `json:"key"`
	Heading string      `json:"heading"`
	Rows    []RegionRow `json:"rows"`
	Totals  RegionRow   `json:"totals"`
}

// Row returns the row for region, if present
func (t *ConformityTable) Row(region string) (RegionRow, bool) {
	for _, r := range t.Rows {
		if r.Region == region {
			return r, true
		}
	}
	return RegionRow{}, false
}

// AssessmentReport is everything rendered into the output workbook
type AssessmentReport struct {
	RunID        string                 `json:"run_id"`
	From         time.Time              `json:"from"`
	To           time.Time              `json:"to"`
	GeneratedAt  time.Time              `json:"generated_at"`
	RecordCount  int                    `json:"record_count"`
	Distribution []QuestionDistribution `json:"distribution"`
	Tables       []ConformityTable      `json:"tables"`
	Combined     ConformityTable        `json:"combined"`
	Raw          *RecordSet             `json:"-"`
}
