package services

import (
	"time"

	"contactbook/internal/models"
)

// UpcomingBirthdays returns the contacts whose next birthday falls within
// [today, today+days], ignoring the birth year. Both this year's and next
// year's occurrence are tested so that a window spanning New Year matches
// January birthdays. Each contact appears at most once, in input order.
func UpcomingBirthdays(contacts []models.Contact, today time.Time, days int) []models.Contact {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, days)

	result := []models.Contact{}
	seen := make(map[string]struct{})
	for _, c := range contacts {
		if c.Birthday == nil || c.Birthday.IsZero() {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		for _, year := range []int{start.Year(), start.Year() + 1} {
			occurrence := anniversary(*c.Birthday, year)
			if !occurrence.Before(start) && !occurrence.After(end) {
				result = append(result, c)
				seen[c.ID] = struct{}{}
				break
			}
		}
	}
	return result
}

// anniversary moves the birthday into year. Feb 29 falls on Feb 28 in common
// years.
func anniversary(birthday models.Date, year int) time.Time {
	month, day := birthday.Month(), birthday.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
