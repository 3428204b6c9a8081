package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cppla/wellcheck/models"
	"github.com/cppla/wellcheck/utils"
)

const (
	// MinInsightEntries is the history length below which no correlations are reported.
	MinInsightEntries = 10
	// MinCorrelation is the |r| an insight needs to be reported.
	MinCorrelation = 0.30
)

// Confidence tiers.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// DataPoint is one paired sample behind an insight.
type DataPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Date string  `json:"date"`
}

// Insight is a correlation between two tracked responses.
type Insight struct {
	Variables   [2]string   `json:"variables"`
	Correlation float64     `json:"correlation"`
	Confidence  Confidence  `json:"confidence"`
	Message     string      `json:"message"`
	DataPoints  []DataPoint `json:"data_points"`
}

type correlationPair struct {
	x, y       string
	extract    func(models.Responses) (x, y float64, ok bool)
	onNegative string
	onPositive string
}

var correlationPairs = []correlationPair{
	{
		x: "sleep_hours", y: "stress_level",
		extract: func(r models.Responses) (float64, float64, bool) {
			return r.SleepHours, float64(r.StressLevel), true
		},
		onNegative: "Your sleep hours are strongly linked to stress. On days you sleep more, your stress tends to be lower.",
		onPositive: "Interestingly, more sleep correlates with higher stress for you. Consider sleep quality, not just hours.",
	},
	{
		x: "activity_minutes", y: "mood",
		extract: func(r models.Responses) (float64, float64, bool) {
			return float64(r.ActivityMinutes), float64(r.Mood), true
		},
		onNegative: "Lower activity seems to correlate with better mood for you. Perhaps rest is key.",
		onPositive: "Days with more activity correlate with better mood.",
	},
	{
		x: "work_hours", y: "stress_level",
		extract: func(r models.Responses) (float64, float64, bool) {
			if r.WorkHours == nil {
				return 0, 0, false
			}
			return *r.WorkHours, float64(r.StressLevel), true
		},
		onNegative: "Longer work days don't seem to raise your stress. Keep an eye on recovery anyway.",
		onPositive: "Longer work days line up with higher stress for you. Protect your evenings where you can.",
	},
}

// Pearson returns the correlation coefficient of xs and ys. Degenerate input (fewer than two pairs,
// mismatched lengths or zero variance) yields 0.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}
	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	den := math.Sqrt(varX * varY)
	if den == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, cov/den))
}

// ConfidenceFor grades a correlation by sample size and strength.
func ConfidenceFor(r float64, n int) Confidence {
	abs := math.Abs(r)
	switch {
	case n < MinInsightEntries:
		return ConfidenceLow
	case abs >= 0.5 && n >= 20:
		return ConfidenceHigh
	case abs >= 0.3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ComputeInsights correlates the tracked pairs over history. Fewer than MinInsightEntries entries
// yields nothing; only pairs with |r| >= MinCorrelation are reported.
func ComputeInsights(history []models.CheckIn) []Insight {
	if len(history) < MinInsightEntries {
		return []Insight{}
	}
	out := []Insight{}
	for _, pair := range correlationPairs {
		xs := make([]float64, 0, len(history))
		ys := make([]float64, 0, len(history))
		points := make([]DataPoint, 0, len(history))
		for _, e := range history {
			x, y, ok := pair.extract(e.Responses)
			if !ok {
				continue
			}
			xs = append(xs, x)
			ys = append(ys, y)
			points = append(points, DataPoint{X: x, Y: y, Date: e.Date})
		}
		if len(xs) < MinInsightEntries {
			continue
		}
		r := Pearson(xs, ys)
		if math.Abs(r) < MinCorrelation {
			continue
		}
		msg := pair.onPositive
		if r < 0 {
			msg = pair.onNegative
		}
		out = append(out, Insight{
			Variables:   [2]string{pair.x, pair.y},
			Correlation: r,
			Confidence:  ConfidenceFor(r, len(xs)),
			Message:     msg,
			DataPoints:  points,
		})
	}
	return out
}

// WindowStats holds the means of one week.
type WindowStats struct {
	Entries int     `json:"entries"`
	Mood    float64 `json:"mood"`
	Stress  float64 `json:"stress"`
	Sleep   float64 `json:"sleep"`
	Risk    float64 `json:"risk"`
}

// MetricChange holds percentage changes between two windows.
type MetricChange struct {
	Mood   float64 `json:"mood"`
	Stress float64 `json:"stress"`
	Sleep  float64 `json:"sleep"`
	Risk   float64 `json:"risk"`
}

// WeeklySummary compares the last 7 days to the 7 days before.
type WeeklySummary struct {
	ThisWeek       WindowStats  `json:"this_week"`
	LastWeek       WindowStats  `json:"last_week"`
	Change         MetricChange `json:"change"`
	Recommendation string       `json:"recommendation"`
}

// PercentChange is (current-previous)/previous*100, defined as 0 when previous is not positive.
func PercentChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// ComputeWeeklySummary splits history into this week (today and the 6 days before) and last week
// (7 to 13 days ago). Risk is averaged as an ordinal over scored entries only.
func ComputeWeeklySummary(history []models.CheckIn, today time.Time) WeeklySummary {
	thisStart := today.AddDate(0, 0, -6).Format(DateLayout)
	lastStart := today.AddDate(0, 0, -13).Format(DateLayout)
	end := today.Format(DateLayout)

	var this, last []models.CheckIn
	for _, e := range history {
		switch {
		case e.Date >= thisStart && e.Date <= end:
			this = append(this, e)
		case e.Date >= lastStart && e.Date < thisStart:
			last = append(last, e)
		}
	}

	s := WeeklySummary{ThisWeek: windowStats(this), LastWeek: windowStats(last)}
	s.Change = MetricChange{
		Mood:   PercentChange(s.ThisWeek.Mood, s.LastWeek.Mood),
		Stress: PercentChange(s.ThisWeek.Stress, s.LastWeek.Stress),
		Sleep:  PercentChange(s.ThisWeek.Sleep, s.LastWeek.Sleep),
		Risk:   PercentChange(s.ThisWeek.Risk, s.LastWeek.Risk),
	}
	s.Recommendation = recommend(s.Change)
	return s
}

func windowStats(entries []models.CheckIn) WindowStats {
	w := WindowStats{Entries: len(entries)}
	if len(entries) == 0 {
		return w
	}
	var mood, stress, sleep, risk float64
	scored := 0
	for _, e := range entries {
		mood += float64(e.Responses.Mood)
		stress += float64(e.Responses.StressLevel)
		sleep += e.Responses.SleepHours
		if e.Result != nil && e.Result.Risk.Ordinal() > 0 {
			risk += float64(e.Result.Risk.Ordinal())
			scored++
		}
	}
	n := float64(len(entries))
	w.Mood, w.Stress, w.Sleep = mood/n, stress/n, sleep/n
	if scored > 0 {
		w.Risk = risk / float64(scored)
	}
	return w
}

// recommend picks the first matching rule.
func recommend(c MetricChange) string {
	switch {
	case c.Stress < -10 && c.Sleep > 5:
		return "Sleep improved and stress is down, great progress! Keep it up."
	case c.Stress > 10 && c.Sleep < -5:
		return "Stress is up and sleep is down. Try to prioritize rest this week."
	case c.Sleep > 10:
		return fmt.Sprintf("Sleep improved by %d%% this week, great! Keep it up.", int(math.Round(c.Sleep)))
	case c.Mood > 10:
		return "Mood is trending up, you're doing well!"
	case c.Stress < -10:
		return "Stress decreased this week, nice work managing it."
	default:
		return "Keep checking in regularly for personalized insights."
	}
}

// InsightService serves the derived analytics, caching correlations in redis when available.
type InsightService struct {
	*env
	history *HistoryService
}

func insightCachePrefix(userID string) string {
	return "insights:" + userID + ":"
}

// Insights returns the correlations over the user's full history.
func (s *InsightService) Insights(ctx context.Context, uc UserContext) ([]Insight, error) {
	key := insightCachePrefix(uc.UserID) + "correlations"
	var cached []Insight
	if utils.CacheGetJSON(key, &cached) {
		return cached, nil
	}
	history, err := s.history.List(ctx, uc.UserID, 0)
	if err != nil {
		return nil, err
	}
	out := ComputeInsights(history)
	utils.CacheSetJSON(key, out, s.cacheTTL)
	return out, nil
}

// Weekly compares this week to last week.
func (s *InsightService) Weekly(ctx context.Context, uc UserContext) (WeeklySummary, error) {
	history, err := s.history.List(ctx, uc.UserID, 14)
	if err != nil {
		return WeeklySummary{}, err
	}
	return ComputeWeeklySummary(history, s.today()), nil
}

// Monthly summarises the last 30 days against the 30 before.
func (s *InsightService) Monthly(ctx context.Context, uc UserContext) (MonthlySummary, error) {
	history, err := s.history.List(ctx, uc.UserID, 60)
	if err != nil {
		return MonthlySummary{}, err
	}
	return ComputeMonthlySummary(history, s.today()), nil
}

// Forecast projects burnout for the next week.
func (s *InsightService) Forecast(ctx context.Context, uc UserContext) ([]ForecastPoint, error) {
	history, err := s.history.List(ctx, uc.UserID, 7)
	if err != nil {
		return nil, err
	}
	return ComputeForecast(history, s.today()), nil
}
