// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"sort"
	"time"
)

// UpcomingBirthdays returns the contacts whose next birthday falls within
// days calendar days starting at today, ordered by how soon it comes.
//
// A Feb 29 birthday is celebrated on Mar 1 in non-leap years. The window
// crosses the year boundary.
func UpcomingBirthdays(candidates []*Contact, today time.Time, days int) []*Contact {
	start := calendarDay(today)

	type upcoming struct {
		contact *Contact
		inDays  int
	}

	matches := make([]upcoming, 0)
	for _, contact := range candidates {
		if contact.BirthDate == nil {
			continue
		}

		next := anniversary(contact.BirthDate.Time, start.Year())
		if next.Before(start) {
			next = anniversary(contact.BirthDate.Time, start.Year()+1)
		}

		inDays := int(next.Sub(start).Hours() / 24)
		if inDays < days {
			matches = append(matches, upcoming{contact: contact, inDays: inDays})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].inDays < matches[j].inDays })

	result := make([]*Contact, 0, len(matches))
	for _, match := range matches {
		result = append(result, match.contact)
	}
	return result
}

// anniversary places birth's month and day in year.
func anniversary(birth time.Time, year int) time.Time {
	month, day := birth.Month(), birth.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		month, day = time.March, 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
