// Package eval measures retrieval quality against a golden query set.
package eval

import (
	"context"
	"fmt"
	"strings"

	"pdfsearch/internal/domain"
)

// Quality targets for a passing run.
const (
	DefaultK     = 5
	RecallTarget = 0.80
	MRRTarget    = 0.50
)

// Case is a query and a substring the expected filename must contain.
// Substrings tolerate the _2, _3 suffixes of duplicate generated names.
type Case struct {
	Query    string
	Expected string
}

// Golden covers every generated document category.
var Golden = []Case{
	{"What was the quarterly revenue growth percentage?", "Q1_2024_Financial_Report"},
	{"What are the company cash reserves?", "Cash_Flow_Statement"},
	{"What is the profit margin for the quarter?", "Profit_Loss_Statement"},
	{"What is the annual budget summary?", "Annual_Budget"},
	{"What does the audit report show?", "Audit_Report"},

	{"How does the API handle authentication and JWT?", "API_Documentation"},
	{"What is the database schema and architecture?", "Database_Schema_Design"},
	{"What is the Kubernetes configuration?", "Kubernetes_Configuration"},
	{"How many concurrent users can the system handle?", "Performance_Optimization"},
	{"What is the CI/CD pipeline setup?", "CI_CD_Pipeline"},

	{"What is the remote work policy for employees?", "Remote_Work_Policy"},
	{"What are the employee benefits and health insurance?", "Benefits_Overview"},
	{"What is the 401k matching and compensation?", "Compensation_Structure"},
	{"What is the new employee onboarding process?", "Onboarding_Checklist"},
	{"What are the termination and exit procedures?", "Termination_Procedures"},

	{"What is in the non-disclosure agreement?", "NDA_Standard_Form"},
	{"What are the GDPR compliance requirements?", "GDPR_Compliance"},
	{"What is the software license agreement?", "Software_License_Agreement"},

	{"What is the market size and growth projection?", "Market_Analysis"},
	{"What is the AI implementation roadmap?", "AI_Implementation_Roadmap"},
}

// Searcher is the retrieval stage under test.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}

// CaseResult is the outcome of one golden query. Rank is 1-based, 0 when missed.
type CaseResult struct {
	Case
	Top  []string
	Rank int
}

// Found reports whether the expected document was retrieved.
func (r CaseResult) Found() bool { return r.Rank > 0 }

// Report aggregates a run.
type Report struct {
	K       int
	Results []CaseResult
	Found   int
	Recall  float64
	MRR     float64
}

// Passed reports whether both quality targets are met.
func (r *Report) Passed() bool {
	return r.Recall >= RecallTarget && r.MRR >= MRRTarget
}

// Evaluate runs every case through the searcher and scores the top k filenames.
// A non-positive k uses DefaultK.
func Evaluate(ctx context.Context, s Searcher, cases []Case, k int) (*Report, error) {
	if k <= 0 {
		k = DefaultK
	}
	report := &Report{K: k, Results: make([]CaseResult, 0, len(cases))}
	var reciprocal float64
	for _, c := range cases {
		hits, err := s.Search(ctx, c.Query, k)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", c.Query, err)
		}
		res := CaseResult{Case: c, Top: make([]string, 0, len(hits))}
		for i, h := range hits[:min(len(hits), k)] {
			res.Top = append(res.Top, h.Filename)
			if res.Rank == 0 && strings.Contains(h.Filename, c.Expected) {
				res.Rank = i + 1
			}
		}
		if res.Found() {
			report.Found++
			reciprocal += 1 / float64(res.Rank)
		}
		report.Results = append(report.Results, res)
	}
	if n := len(cases); n > 0 {
		report.Recall = float64(report.Found) / float64(n)
		report.MRR = reciprocal / float64(n)
	}
	return report, nil
}
