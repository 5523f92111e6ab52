package notify

import "fmt"

// MillisecondsToHMS renders a duration as HH:MM:SS, truncating sub-second
// remainders. Hours are zero-padded to two digits and simply widen past 99.
func MillisecondsToHMS(ms int64) string {
	if ms <= 0 {
		return "00:00:00"
	}
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
