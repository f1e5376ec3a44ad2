package dates

import "fmt"

// Humanize describes d relative to today, e.g. "tomorrow", "next
// friday", "in 12 days". Rules apply in priority order; the weekday
// form covers the next seven days, with "this" for a weekday that has
// not yet come around this week and "next" once it has.
func Humanize(d, today Date) string {
	delta := DayDelta(today, d)
	switch {
	case delta < 0:
		return fmt.Sprintf("%d days ago", -delta)
	case delta == 0:
		return "today"
	case delta == 1:
		return "tomorrow"
	case delta <= 7:
		prefix := "next "
		if d.Weekday() > today.Weekday() {
			prefix = "this "
		}
		return prefix + weekdayNames[d.Weekday()]
	case delta <= 29:
		return fmt.Sprintf("in %d days", delta)
	case delta <= 59:
		return "in about a month"
	default:
		return fmt.Sprintf("in about %d months", (delta+15)/30)
	}
}

// Label joins the absolute stored form with the relative phrase; the
// two are always displayed together.
func Label(d, today Date) string {
	return fmt.Sprintf("%s (%s)", d.Stored(), Humanize(d, today))
}

var weekdayNames = [...]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}
