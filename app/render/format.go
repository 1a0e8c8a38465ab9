package render

import "time"

// DateLayout matches the en-US locale string.
const DateLayout = "1/2/2006, 3:04:05 PM"

// FormatDate renders t for bylines; the zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
