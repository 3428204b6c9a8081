package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cppla/wellcheck/models"
	"github.com/cppla/wellcheck/utils"
)

// Prober reports whether the scoring service can currently be reached.
type Prober interface {
	Online(ctx context.Context) bool
}

// Scorer turns a check-in payload into a risk assessment.
//
// Errors are one of ErrRateLimited, *RemoteValidationError or *ServerError.
type Scorer interface {
	Prober
	Score(ctx context.Context, payload models.CheckInPayload) (*models.PredictionResponse, error)
}

// ScorerSet picks the scorer for a given user.
type ScorerSet struct {
	Remote Scorer
	Local  *LocalScorer
}

// For returns the local heuristic for demo-mode users or when no remote service is configured.
func (s *ScorerSet) For(u *models.User) Scorer {
	if s.Remote == nil || (u != nil && u.Preferences.DemoMode) {
		return s.Local
	}
	return s.Remote
}

var demoResponses = map[models.Risk]models.PredictionResponse{
	models.RiskLow: {
		Risk:  models.RiskLow,
		Score: 0.32,
		TopFactors: []models.Factor{
			{Feature: "sleep_hours", Contribution: 0.15},
			{Feature: "activity_minutes", Contribution: 0.10},
			{Feature: "mood", Contribution: 0.07},
		},
		Tips: []string{
			"Great job maintaining your routine! Keep it up.",
			"Consider adding a short meditation session to enhance your wellbeing.",
		},
	},
	models.RiskMedium: {
		Risk:  models.RiskMedium,
		Score: 0.62,
		TopFactors: []models.Factor{
			{Feature: "sleep_hours", Contribution: 0.27},
			{Feature: "stress", Contribution: 0.21},
			{Feature: "activity_minutes", Contribution: 0.12},
		},
		Tips: []string{
			"Take a 10-minute walk after your next meeting.",
			"Try to get 7+ hours of sleep tonight.",
			"Consider a brief break every hour to reduce stress.",
		},
	},
	models.RiskHigh: {
		Risk:  models.RiskHigh,
		Score: 0.84,
		TopFactors: []models.Factor{
			{Feature: "stress", Contribution: 0.38},
			{Feature: "sleep_hours", Contribution: 0.29},
			{Feature: "focus", Contribution: 0.17},
		},
		Tips: []string{
			"Your stress levels are elevated. Take a 15-minute break now.",
			"Prioritize 8 hours of sleep tonight, it's crucial for recovery.",
			"Consider speaking with your manager about workload balance.",
			"Try a guided breathing exercise (5 minutes).",
		},
	},
}

// ClassifyRisk applies the fixed demo thresholds.
func ClassifyRisk(r models.Responses) models.Risk {
	switch {
	case r.StressLevel >= 8 || r.SleepHours < 5 || r.Mood <= 2:
		return models.RiskHigh
	case r.StressLevel >= 5 || r.SleepHours < 6.5 || r.Mood <= 3:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// HeuristicPrediction returns the canonical response for the tier the responses fall into.
func HeuristicPrediction(r models.Responses) *models.PredictionResponse {
	canned := demoResponses[ClassifyRisk(r)]
	out := canned
	out.TopFactors = append([]models.Factor(nil), canned.TopFactors...)
	out.Tips = append([]string(nil), canned.Tips...)
	return &out
}

// LocalScorer scores with the demo heuristic. It is always online.
type LocalScorer struct {
	latency time.Duration
}

// NewLocalScorer returns a heuristic scorer that waits latency before answering.
func NewLocalScorer(latency time.Duration) *LocalScorer {
	return &LocalScorer{latency: latency}
}

func (s *LocalScorer) Online(context.Context) bool { return true }

func (s *LocalScorer) Score(ctx context.Context, payload models.CheckInPayload) (*models.PredictionResponse, error) {
	start := time.Now()
	defer func() { utils.ScoringLatency.WithLabelValues("local").Observe(time.Since(start).Seconds()) }()

	if s.latency > 0 {
		t := time.NewTimer(s.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, &ServerError{Err: ctx.Err()}
		case <-t.C:
		}
	}
	return HeuristicPrediction(payload.Responses), nil
}

// HTTPScorer talks to a scoring service over HTTP.
type HTTPScorer struct {
	client *resty.Client
}

// NewHTTPScorer creates a client for the service at baseURL. Every call is bounded by timeout.
func NewHTTPScorer(baseURL string, timeout time.Duration) *HTTPScorer {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &HTTPScorer{client: c}
}

type scoringErrorBody struct {
	Message string `json:"message"`
}

// Score posts the payload to /api/v1/predictions.
func (s *HTTPScorer) Score(ctx context.Context, payload models.CheckInPayload) (*models.PredictionResponse, error) {
	start := time.Now()
	defer func() { utils.ScoringLatency.WithLabelValues("http").Observe(time.Since(start).Seconds()) }()

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&payload).
		Post("/api/v1/predictions")
	if err != nil {
		return nil, &ServerError{Err: err}
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case status == http.StatusBadRequest:
		var body scoringErrorBody
		_ = json.Unmarshal(resp.Body(), &body)
		if body.Message == "" {
			body.Message = "payload rejected"
		}
		return nil, &RemoteValidationError{Message: body.Message}
	case status < 200 || status > 299:
		return nil, &ServerError{Status: status}
	}

	var out models.PredictionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &ServerError{Status: resp.StatusCode(), Err: errors.New("decode prediction: " + err.Error())}
	}
	return &out, nil
}

// Online probes GET /health.
func (s *HTTPScorer) Online(ctx context.Context) bool {
	resp, err := s.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return false
	}
	return resp.StatusCode() >= 200 && resp.StatusCode() < 300
}
