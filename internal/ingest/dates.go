package ingest

import (
	"regexp"
	"strconv"
	"time"

	"github.com/ppiankov/befundlink/internal/model"
)

var (
	isoPattern    = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	germanPattern = regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})[./](\d{4}|\d{2})\b`)
)

// twoDigitPivot decides the century of two-digit years: below it is 20xx
const twoDigitPivot = 50

// FindDates returns the distinct calendar dates mentioned in text.
// Recognized forms are YYYY-MM-DD, DD.MM.YYYY, D.M.YYYY, DD.MM.YY and
// DD/MM/YYYY. Strings that are not valid calendar dates are ignored.
func FindDates(text string) model.DateSet {
	seen := make(map[time.Time]bool)
	var dates model.DateSet

	add := func(year, month, day int) {
		d, ok := civilDate(year, month, day)
		if !ok || seen[d] {
			return
		}
		seen[d] = true
		dates = append(dates, d)
	}

	for _, m := range isoPattern.FindAllStringSubmatch(text, -1) {
		add(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	for _, m := range germanPattern.FindAllStringSubmatch(text, -1) {
		year := atoi(m[3])
		if len(m[3]) == 2 {
			if year < twoDigitPivot {
				year += 2000
			} else {
				year += 1900
			}
		}
		add(year, atoi(m[2]), atoi(m[1]))
	}

	return dates
}

// civilDate builds a UTC date and rejects values time.Date would normalize
func civilDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
