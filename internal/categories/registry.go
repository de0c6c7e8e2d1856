// Package categories is the fixed registry of expense categories and their
// display attributes.
package categories

// Category keys.
const (
	Food          = "food"
	Transport     = "transport"
	Entertainment = "entertainment"
	Shopping      = "shopping"
	Bills         = "bills"
	Health        = "health"
	Other         = "other"
)

// Category describes how one category key is displayed.
type Category struct {
	Key        string
	Label      string
	Icon       string
	ColorToken string
	ChartColor string
}

var registry = []Category{
	{Key: Food, Label: "Food & Dining", Icon: "utensils-crossed", ColorToken: "expense-food", ChartColor: "hsl(25, 95%, 53%)"},
	{Key: Transport, Label: "Transport", Icon: "car", ColorToken: "expense-transport", ChartColor: "hsl(199, 89%, 48%)"},
	{Key: Entertainment, Label: "Entertainment", Icon: "gamepad-2", ColorToken: "expense-entertainment", ChartColor: "hsl(280, 87%, 65%)"},
	{Key: Shopping, Label: "Shopping", Icon: "shopping-bag", ColorToken: "expense-shopping", ChartColor: "hsl(339, 90%, 51%)"},
	{Key: Bills, Label: "Bills & Utilities", Icon: "file-text", ColorToken: "expense-bills", ChartColor: "hsl(142, 71%, 45%)"},
	{Key: Health, Label: "Health", Icon: "heart", ColorToken: "expense-health", ChartColor: "hsl(0, 84%, 60%)"},
	{Key: Other, Label: "Other", Icon: "more-horizontal", ColorToken: "expense-other", ChartColor: "hsl(215, 16%, 47%)"},
}

var byKey = func() map[string]Category {
	m := make(map[string]Category, len(registry))
	for _, c := range registry {
		m[c.Key] = c
	}
	return m
}()

// All returns the categories in display order. The slice is a copy.
func All() []Category {
	out := make([]Category, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the category for key. Unknown keys resolve to Other.
func Lookup(key string) Category {
	if c, ok := byKey[key]; ok {
		return c
	}
	return byKey[Other]
}

func IsKnown(key string) bool {
	_, ok := byKey[key]
	return ok
}
