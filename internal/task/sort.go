package task

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/reeshuffled/dodue/internal/dates"
)

var nameCollator = collate.New(language.English)

// SortAll puts the whole list in display order, in place: do date
// ascending by calendar day, ties broken by locale-aware name
// comparison. The sort is stable, so fully equal keys keep their
// relative order.
func SortAll(tasks []*Task) {
	slices.SortStableFunc(tasks, func(a, b *Task) int {
		if d := dates.DayDelta(b.DoDate, a.DoDate); d != 0 {
			return d
		}
		return nameCollator.CompareString(a.Name, b.Name)
	})
}
