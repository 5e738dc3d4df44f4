package reminder

import "time"

const dayLayout = "2006-01-02"

// ToUTCDayStart truncates t to 00:00:00 UTC of its UTC calendar day.
func ToUTCDayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of whole UTC calendar days from from to to.
// It is 0 on the same UTC day and negative when to is earlier.
func DaysUntil(from, to time.Time) int {
	diff := ToUTCDayStart(to).Sub(ToUTCDayStart(from))
	return int(diff / (24 * time.Hour))
}

// FormatDay renders the UTC calendar day of t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return ToUTCDayStart(t).Format(dayLayout)
}
