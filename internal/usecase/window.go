package usecase

import (
	"time"

	"ecogw/internal/domain/models"
)

// Layout places a job's day window in the register table.
type Layout struct {
	Start    uint16
	Days     int
	Location *time.Location
	Palette  models.Palette
}

// Today returns the current calendar day in the layout's zone.
func (l Layout) Today(now time.Time) models.Date {
	loc := l.Location
	if loc == nil {
		loc = time.UTC
	}
	return models.DateOf(now.In(loc))
}

// BuildWindow maps signals onto Days consecutive days starting at today.
// Day i lands on address Start+i; a day without a signal gets models.NoData.
// When a provider repeats a date the last entry wins.
func BuildWindow(l Layout, today models.Date, signals []models.DailySignal) []models.WindowDay {
	byDate := make(map[models.Date]models.DailySignal, len(signals))
	for _, s := range signals {
		byDate[s.Date] = s
	}

	days := make([]models.WindowDay, l.Days)
	for i := range days {
		date := today.AddDays(i)
		day := models.WindowDay{
			Offset:  i,
			Address: l.Start + uint16(i),
			Date:    date,
			Value:   models.NoData,
		}
		if s, ok := byDate[date]; ok {
			day.Value = s.Value
			day.Message = s.Message
		}
		day.Color = l.Palette.Name(day.Value)
		days[i] = day
	}
	return days
}

// Batch converts a window into one register write.
func Batch(days []models.WindowDay) map[uint16]models.RegisterValue {
	batch := make(map[uint16]models.RegisterValue, len(days))
	for _, d := range days {
		batch[d.Address] = models.Known(d.Value)
	}
	return batch
}
