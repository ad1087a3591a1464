package app

import (
	"fmt"

	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/notify"
)

// tabIndex returns c's position in the tab bar.
func tabIndex(c model.Category) int {
	for i, fc := range model.FilterCategories {
		if fc == c {
			return i
		}
	}
	return 0
}

// cycleTab returns the category delta tabs away from c, wrapping.
func cycleTab(c model.Category, delta int) model.Category {
	n := len(model.FilterCategories)
	return model.FilterCategories[((tabIndex(c)+delta)%n+n)%n]
}

// tabLabels renders "Label (count)" for every tab. Counts come from the
// merged summary; they are omitted until the first load.
func tabLabels(v *notify.View) []string {
	labels := make([]string, len(model.FilterCategories))
	for i, c := range model.FilterCategories {
		if v == nil {
			labels[i] = c.Label()
			continue
		}
		labels[i] = fmt.Sprintf("%s (%d)", c.Label(), v.Summary.Count(c))
	}
	return labels
}
