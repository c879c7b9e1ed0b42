package docai

import (
	"fmt"
	"os"

	"finlight/cashflow-analyzer/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// CategoryRule describes one category for the categorization prompt.
type CategoryRule struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Rules configures categorization context and local flagging heuristics.
// A YAML rules file can override the defaults.
type Rules struct {
	Categories   []CategoryRule `yaml:"categories"`
	FlagKeywords []string       `yaml:"flag_keywords"`
	// LargeAmountThreshold is the absolute amount at which a transaction
	// gets flagged for review. Zero disables the check.
	LargeAmountThreshold float64 `yaml:"large_amount_threshold"`
}

// LargeAmount returns the threshold as a decimal for amount comparisons.
func (r Rules) LargeAmount() decimal.Decimal {
	return decimal.NewFromFloat(r.LargeAmountThreshold)
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		Categories: []CategoryRule{
			{Name: models.CategoryIncome, Description: "salary, wages, recurring deposits"},
			{Name: models.CategoryExpense, Description: "everyday spending and bills"},
			{Name: models.CategoryHousing, Description: "rent or mortgage payments"},
			{Name: models.CategoryOneTime, Description: "isolated large transfers or purchases"},
			{Name: models.CategoryRecurring, Description: "subscriptions and other repeating charges"},
		},
		FlagKeywords: []string{
			"nsf", "overdraft", "returned item", "chargeback", "reversal",
			"gambling", "casino", "payday loan", "cash advance",
		},
		LargeAmountThreshold: 10000,
	}
}

// LoadRules reads a YAML rules file, falling back to the defaults for any
// section the file leaves empty. An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("could not read rules file %s: %w", path, err)
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return rules, fmt.Errorf("could not parse rules file %s: %w", path, err)
	}

	if len(loaded.Categories) > 0 {
		rules.Categories = loaded.Categories
	}
	if len(loaded.FlagKeywords) > 0 {
		rules.FlagKeywords = loaded.FlagKeywords
	}
	if loaded.LargeAmountThreshold > 0 {
		rules.LargeAmountThreshold = loaded.LargeAmountThreshold
	}

	return rules, nil
}
