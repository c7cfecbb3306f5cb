// Package expense extracts an amount, category and description from a
// free-text expense statement like "I spent $45.50 on groceries".
package expense

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"finance-coach/internal/storage"
)

// ErrNoAmount is returned when no decimal quantity can be located in the
// text. This is the only validation the parser performs.
var ErrNoAmount = errors.New("could not detect amount, try 'I spent $50 on groceries'")

var amountPattern = regexp.MustCompile(`(?:\$\s*)?(\d+(?:\.\d{1,2})?)`)

type categoryRule struct {
	category storage.Category
	keywords []string
}

// categoryRules is evaluated in order; the first category with any
// case-insensitive substring match wins. Text matching several categories
// resolves by this order alone, which is a deliberate heuristic and not
// disambiguated further.
var categoryRules = []categoryRule{
	{storage.CategoryFood, []string{"food", "grocer", "restaurant", "dining", "coffee"}},
	{storage.CategoryTransport, []string{"transport", "uber", "taxi", "bus", "train", "gas", "fuel"}},
	{storage.CategoryEntertainment, []string{"movie", "cinema", "entertainment", "netflix", "music"}},
	{storage.CategoryShopping, []string{"shopping", "clothes", "apparel", "amazon", "purchase"}},
	{storage.CategoryBills, []string{"bill", "utilities", "electric", "water", "internet", "phone"}},
	{storage.CategoryHealthcare, []string{"doctor", "hospital", "pharmacy", "medicine", "health"}},
}

// Parsed is the structured result of a parse. Description is the verbatim
// trimmed input, not just the matched span.
type Parsed struct {
	Amount      float64
	Category    storage.Category
	Description string
}

// Parse extracts the first decimal quantity (optionally preceded by a
// currency marker) and assigns a category by keyword.
func Parse(text string) (Parsed, error) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return Parsed{}, ErrNoAmount
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Parsed{}, ErrNoAmount
	}
	return Parsed{
		Amount:      amount,
		Category:    Categorize(text),
		Description: strings.TrimSpace(text),
	}, nil
}

// Categorize returns the first matching category in rule order, or "other".
func Categorize(text string) storage.Category {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, k := range rule.keywords {
			if strings.Contains(lower, k) {
				return rule.category
			}
		}
	}
	return storage.CategoryOther
}
