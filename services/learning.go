package services

import "time"

// LearningModule is a static piece of self-help content.
type LearningModule struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Duration string   `json:"duration"`
	Type     string   `json:"type"`
	Tags     []string `json:"tags"`
}

var learningCatalog = []LearningModule{
	{ID: "stress-management-basics", Title: "Stress Management Basics", Summary: "Learn simple techniques to reduce workplace stress and anxiety", Duration: "3 min read", Type: "article", Tags: []string{"stress", "mindfulness", "workplace"}},
	{ID: "sleep-hygiene", Title: "Sleep Hygiene 101", Summary: "Improve your sleep quality for better productivity and mood", Duration: "4 min read", Type: "article", Tags: []string{"sleep", "health", "recovery"}},
	{ID: "desk-stretches", Title: "Quick Desk Stretches", Summary: "Easy stretches you can do at your desk to boost energy", Duration: "2 min video", Type: "video", Tags: []string{"activity", "energy", "movement"}},
	{ID: "focus-techniques", Title: "Boost Your Focus", Summary: "Science-backed methods to improve concentration and mental clarity", Duration: "3 min read", Type: "article", Tags: []string{"focus", "productivity", "cognitive"}},
	{ID: "work-life-balance", Title: "Work-Life Balance", Summary: "Maintain healthy boundaries and prevent burnout", Duration: "5 min read", Type: "article", Tags: []string{"balance", "boundaries", "wellbeing"}},
	{ID: "breathing-exercises", Title: "Breathing Exercises", Summary: "Quick breathing techniques to calm your mind in stressful moments", Duration: "2 min video", Type: "video", Tags: []string{"stress", "mindfulness", "quick-tips"}},
}

var dailyTips = []string{
	"Stand up and stretch for 2 minutes.",
	"Take three deep breaths before your next meeting.",
	"Drink a glass of water right now.",
	"Look away from your screen for 20 seconds.",
	"Set a boundary: no work emails after 7 PM tonight.",
	"Write down one thing you're grateful for today.",
	"Take a 5-minute walk around your space.",
	"Close your eyes and listen to the sounds around you for 1 minute.",
}

// LearningCatalog returns a copy of the module list.
func LearningCatalog() []LearningModule {
	return append([]LearningModule(nil), learningCatalog...)
}

// FindModule looks a module up by id.
func FindModule(id string) (LearningModule, bool) {
	for _, m := range learningCatalog {
		if m.ID == id {
			return m, true
		}
	}
	return LearningModule{}, false
}

// DailyTip rotates through the tip list by day of year.
func DailyTip(day time.Time) string {
	return dailyTips[day.YearDay()%len(dailyTips)]
}
