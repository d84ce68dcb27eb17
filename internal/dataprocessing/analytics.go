package dataprocessing

import (
	"safetyreport/pkg/contracts/domain"
)

// BuildDistribution counts the categorized answers of each question.
// Total is the number of records, so the five percentages of a row sum to 1
// whenever there is at least one record.
func BuildDistribution(ns *NormalizedSet, questions []string) []domain.QuestionDistribution {
	out := make([]domain.QuestionDistribution, 0, len(questions))
	for _, q := range questions {
		var counts domain.ResponseCounts
		for _, r := range answersOf(ns, q) {
			counts.Add(r, 1)
		}
		out = append(out, domain.QuestionDistribution{
			Question: q,
			Counts:   counts,
			Total:    ns.Len(),
		})
	}
	return out
}

// answersOf returns the categorized answers of a column, categorizing on
// demand when Normalize was not asked for it
func answersOf(ns *NormalizedSet, column string) []domain.Response {
	if answers, ok := ns.Answers[column]; ok {
		return answers
	}
	answers := make([]domain.Response, ns.Len())
	for i := range answers {
		answers[i] = Categorize(ns.Cell(i, column))
	}
	return answers
}
