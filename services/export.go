package services

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cppla/wellcheck/models"
)

// ErrMalformedCSV wraps every problem found while reading an import.
var ErrMalformedCSV = errors.New("malformed csv")

// CSVHeader is the fixed column order of a history export.
var CSVHeader = []string{
	"date", "mood", "stress_level", "sleep_hours", "workload", "focus", "activity_minutes", "notes",
	"risk", "score",
	"work_hours", "sleep_quality", "connectedness", "top_factors", "tips",
}

// WriteCSV writes entries oldest first.
func WriteCSV(w io.Writer, entries []models.CheckIn) error {
	sorted := append([]models.CheckIn(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range sorted {
		r := e.Responses
		row := []string{
			e.Date,
			strconv.Itoa(r.Mood),
			strconv.Itoa(r.StressLevel),
			formatFloat(r.SleepHours),
			strconv.Itoa(r.Workload),
			strconv.Itoa(r.Focus),
			strconv.Itoa(r.ActivityMinutes),
			e.Notes,
			"", "",
			"",
			strconv.Itoa(r.SleepQuality),
			strconv.Itoa(r.Connectedness),
			"", "",
		}
		if r.WorkHours != nil {
			row[10] = formatFloat(*r.WorkHours)
		}
		if e.Result != nil {
			row[8] = string(e.Result.Risk)
			row[9] = formatFloat(e.Result.Score)
			factors, err := json.Marshal(e.Result.TopFactors)
			if err != nil {
				return err
			}
			tips, err := json.Marshal(e.Result.Tips)
			if err != nil {
				return err
			}
			row[13] = string(factors)
			row[14] = string(tips)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an export. Rows are validated; the first bad row fails the whole read.
func ReadCSV(r io.Reader) ([]models.CheckIn, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range CSVHeader[:10] {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedCSV, required)
		}
	}

	var out []models.CheckIn
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}
		entry, err := parseRow(rec, col)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedCSV, line, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

func parseRow(rec []string, col map[string]int) (models.CheckIn, error) {
	get := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	var perr error
	atoi := func(name string) int {
		v, err := strconv.Atoi(get(name))
		if err != nil && perr == nil {
			perr = fmt.Errorf("%s: %w", name, err)
		}
		return v
	}
	atof := func(name string) float64 {
		v, err := strconv.ParseFloat(get(name), 64)
		if err != nil && perr == nil {
			perr = fmt.Errorf("%s: %w", name, err)
		}
		return v
	}

	entry := models.CheckIn{Date: get("date"), Notes: get("notes")}
	if _, err := time.Parse(DateLayout, entry.Date); err != nil {
		return entry, &ValidationError{Fields: map[string]string{"date": "must be a date formatted YYYY-MM-DD"}}
	}
	entry.Responses = models.Responses{
		SleepHours:      atof("sleep_hours"),
		StressLevel:     atoi("stress_level"),
		Mood:            atoi("mood"),
		Workload:        atoi("workload"),
		Focus:           atoi("focus"),
		ActivityMinutes: atoi("activity_minutes"),
	}
	// older exports lack these columns; default them to the scale midpoint
	entry.Responses.SleepQuality = optionalInt(get("sleep_quality"), 5, &perr, "sleep_quality")
	entry.Responses.Connectedness = optionalInt(get("connectedness"), 5, &perr, "connectedness")
	if wh := get("work_hours"); wh != "" {
		v, err := strconv.ParseFloat(wh, 64)
		if err != nil && perr == nil {
			perr = fmt.Errorf("work_hours: %w", err)
		}
		entry.Responses.WorkHours = &v
	}

	if risk := get("risk"); risk != "" {
		res := &models.PredictionResponse{Risk: models.Risk(risk), Score: atof("score")}
		if res.Risk.Ordinal() == 0 && perr == nil {
			perr = fmt.Errorf("risk: unknown tier %q", risk)
		}
		if raw := get("top_factors"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &res.TopFactors); err != nil && perr == nil {
				perr = fmt.Errorf("top_factors: %w", err)
			}
		}
		if raw := get("tips"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &res.Tips); err != nil && perr == nil {
				perr = fmt.Errorf("tips: %w", err)
			}
		}
		entry.Result = res
	}
	if perr != nil {
		return entry, perr
	}
	if err := ValidateResponses(entry.Responses); err != nil {
		return entry, err
	}
	return entry, nil
}

func optionalInt(s string, def int, perr *error, name string) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil && *perr == nil {
		*perr = fmt.Errorf("%s: %w", name, err)
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
