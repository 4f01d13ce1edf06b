package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/cosalpha/ipo-tracker/models"
)

// daysIn returns the day count of a month in a non-leap reference year
func daysIn(month time.Month) int {
	return time.Date(2025, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func TestOrdinalStrippingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	suffixFor := func(day int) string {
		switch {
		case day%10 == 1 && day != 11:
			return "st"
		case day%10 == 2 && day != 12:
			return "nd"
		case day%10 == 3 && day != 13:
			return "rd"
		default:
			return "th"
		}
	}

	properties.Property("suffixed and plain day text parse to the same date", prop.ForAll(
		func(day int, monthIndex int) bool {
			month := time.Month(monthIndex)
			if day > daysIn(month) {
				return true
			}
			monthName := month.String()[:3]

			suffixed := fmt.Sprintf("%d%s %s", day, suffixFor(day), monthName)
			plain := fmt.Sprintf("%d %s", day, monthName)

			a := ParseDayMonth(suffixed, 2025)
			b := ParseDayMonth(plain, 2025)
			return equalDatePtr(a, b) && a != nil
		},
		gen.IntRange(1, 31),
		gen.IntRange(1, 12),
	))

	properties.Property("parsed day and month round-trip", prop.ForAll(
		func(day int, monthIndex int) bool {
			month := time.Month(monthIndex)
			if day > daysIn(month) {
				return true
			}
			parsed := ParseDayMonth(fmt.Sprintf("%d %s", day, month.String()[:3]), 2025)
			if parsed == nil {
				return false
			}
			return parsed.Day() == day && parsed.Month() == month && parsed.Year() == 2025
		},
		gen.IntRange(1, 31),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}

func TestClassificationProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	base := time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC)

	properties.Property("a record is ongoing exactly when today falls inside its window", prop.ForAll(
		func(startOffset int, length int) bool {
			start := base.AddDate(0, 0, startOffset)
			end := start.AddDate(0, 0, length)
			record := models.IPORecord{
				CompanyName:       "Prop Co",
				SubscriptionStart: &start,
				SubscriptionEnd:   &end,
			}
			got := Classify(record, base, 90)
			inside := !base.Before(start) && !base.After(end)
			if inside {
				return got == models.ClassificationOngoing
			}
			return got != models.ClassificationOngoing
		},
		gen.IntRange(-30, 30),
		gen.IntRange(0, 20),
	))

	properties.Property("a start after today is never ongoing or past", prop.ForAll(
		func(startOffset int) bool {
			start := base.AddDate(0, 0, startOffset)
			record := models.IPORecord{
				CompanyName:       "Prop Co",
				SubscriptionStart: &start,
			}
			got := Classify(record, base, 90)
			if startOffset > 0 {
				return got == models.ClassificationUpcoming
			}
			return got == models.ClassificationUnknown
		},
		gen.IntRange(-30, 30),
	))

	properties.Property("listing inside the trailing window is past, outside is unknown", prop.ForAll(
		func(listedOffset int, windowDays int) bool {
			listed := base.AddDate(0, 0, listedOffset)
			record := models.IPORecord{
				CompanyName: "Prop Co",
				ListingDate: &listed,
			}
			got := Classify(record, base, windowDays)
			inWindow := listedOffset <= 0 && listedOffset >= -windowDays
			if inWindow {
				return got == models.ClassificationPast
			}
			return got == models.ClassificationUnknown
		},
		gen.IntRange(-200, 30),
		gen.IntRange(1, 120),
	))

	properties.TestingRun(t)
}
