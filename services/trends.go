package services

import (
	"math"
	"sort"
	"time"

	"github.com/cppla/wellcheck/models"
)

const (
	goodSleepHours = 7
	forecastDays   = 7
	// forecast when there is no history yet
	neutralBurnout = 50
)

// MonthlySummary counts the milestones of the last 30 days.
type MonthlySummary struct {
	CheckInDays   int     `json:"checkin_days"`
	CalmDays      int     `json:"calm_days"`
	GoodSleepDays int     `json:"good_sleep_days"`
	AvgBurnout    float64 `json:"avg_burnout"`
	PrevBurnout   float64 `json:"prev_avg_burnout"`
	BurnoutChange float64 `json:"burnout_change"`
	Band          string  `json:"band"`
}

// ComputeMonthlySummary looks at today and the 29 days before, and compares the average burnout with
// the 30 days preceding that window. BurnoutChange is in points and 0 without earlier data.
func ComputeMonthlySummary(history []models.CheckIn, today time.Time) MonthlySummary {
	start := today.AddDate(0, 0, -29).Format(DateLayout)
	prevStart := today.AddDate(0, 0, -59).Format(DateLayout)
	end := today.Format(DateLayout)

	var m MonthlySummary
	var sum, prevSum float64
	prevN := 0
	for _, e := range history {
		score := BurnoutScore(e.Responses)
		switch {
		case e.Date >= start && e.Date <= end:
			m.CheckInDays++
			sum += float64(score)
			if score < 40 {
				m.CalmDays++
			}
			if e.Responses.SleepHours >= goodSleepHours {
				m.GoodSleepDays++
			}
		case e.Date >= prevStart && e.Date < start:
			prevSum += float64(score)
			prevN++
		}
	}
	if m.CheckInDays > 0 {
		m.AvgBurnout = round1(sum / float64(m.CheckInDays))
		m.Band = BurnoutBand(int(math.Round(m.AvgBurnout)))
	}
	if prevN > 0 {
		m.PrevBurnout = round1(prevSum / float64(prevN))
		if m.CheckInDays > 0 {
			m.BurnoutChange = round1(m.AvgBurnout - m.PrevBurnout)
		}
	}
	return m
}

// ForecastPoint is one day on the burnout chart.
type ForecastPoint struct {
	Date      string `json:"date"`
	Burnout   int    `json:"burnout"`
	Predicted bool   `json:"predicted"`
}

// ComputeForecast returns the recorded days oldest first followed by a 7-day projection. The projection
// extends the latest burnout by five points per day for each point of stress gained since the previous entry.
func ComputeForecast(history []models.CheckIn, today time.Time) []ForecastPoint {
	sorted := append([]models.CheckIn(nil), history...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	out := make([]ForecastPoint, 0, len(sorted)+forecastDays)
	for i := len(sorted) - 1; i >= 0; i-- {
		out = append(out, ForecastPoint{Date: sorted[i].Date, Burnout: BurnoutScore(sorted[i].Responses)})
	}

	last := neutralBurnout
	trend := 0
	if len(sorted) > 0 {
		last = BurnoutScore(sorted[0].Responses)
	}
	if len(sorted) >= 2 {
		trend = (sorted[0].Responses.StressLevel - sorted[1].Responses.StressLevel) * 5
	}
	for k := 1; k <= forecastDays; k++ {
		out = append(out, ForecastPoint{
			Date:      today.AddDate(0, 0, k).Format(DateLayout),
			Burnout:   clampScore(last + trend*k),
			Predicted: true,
		})
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
