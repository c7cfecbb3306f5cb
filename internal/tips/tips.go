// Package tips looks up short savings-advice snippets from a web search
// provider. Lookups are strictly best-effort: a provider never returns an
// error and degrades to an empty or canned list on any failure.
package tips

import "context"

// Canned queries used by the advisor.
const (
	QueryFinancialTips    = "practical personal savings tips"
	QueryInterestRates    = "current savings account interest rates"
	QueryInvestmentAdvice = "beginner investment advice low-cost index funds"
)

// maxResults bounds every provider response.
const maxResults = 5

// Result is one tip: a page title, its link and a short snippet.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Provider supplies supplementary advice snippets. Implementations must
// honor ctx cancellation and return at most five results.
type Provider interface {
	Search(ctx context.Context, query string) []Result
}

// Static is the local fallback provider used when no search backend is
// configured. It always returns the same single tip.
type Static struct{}

func (Static) Search(_ context.Context, _ string) []Result {
	return []Result{{
		Title:   "General Savings Tips",
		Link:    "https://example.com/savings-tips",
		Snippet: "Track spending, set goals, automate transfers, and cut recurring costs.",
	}}
}

func cap5(results []Result) []Result {
	if len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}
