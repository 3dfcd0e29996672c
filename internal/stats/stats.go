// Package stats aggregates sightings and observations into the dashboard
// figures rendered on the stats page.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/model"
)

// HistogramEntry is one labeled bar.
type HistogramEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Histogram is an ordered set of bars plus the largest value, which the
// templates use to scale bar widths. Max is never below 1 so scaling cannot
// divide by zero.
type Histogram struct {
	Entries []HistogramEntry `json:"entries"`
	Max     int              `json:"max"`
}

// SpeciesCount is a species and how often it was recorded, across sightings
// and observations.
type SpeciesCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FirstSighting identifies the first record of a category.
type FirstSighting struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"` // "Jan 02, 2006"
}

// Summary holds every figure for the stats page.
type Summary struct {
	TotalSightings    int    `json:"total_sightings"`
	TotalObservations int    `json:"total_observations"`
	GeneratedAt       string `json:"generated_at"`
	UniqueSpecies     int    `json:"unique_species"`

	DaysElapsed          int `json:"days_elapsed"`
	DaysWithSightings    int `json:"days_with_sightings"`
	DaysWithoutSightings int `json:"days_without_sightings"`
	CoveragePercent      int `json:"coverage_percent"`

	ByCategory     Histogram `json:"by_category"` // distinct species per category
	BySeason       Histogram `json:"by_season"`
	ByMonth        Histogram `json:"by_month"`
	ByWeather      Histogram `json:"by_weather"`
	ByMoonPhase    Histogram `json:"by_moon_phase"`
	DiscoveryCurve Histogram `json:"discovery_curve"`

	NewSpeciesThisMonth      int `json:"new_species_this_month"`
	RepeatSightingsThisMonth int `json:"repeat_sightings_this_month"`

	TopSpecies            []SpeciesCount           `json:"top_species"`
	SingleSightingSpecies []string                 `json:"single_sighting_species"`
	FirstByCategory       map[string]FirstSighting `json:"first_by_category"`
}

const monthLabel = "Jan 2006"

// Compute aggregates the collections into the stats summary. The clock
// supplies "now" for the elapsed-days and current-month figures.
func Compute(sightings []model.Sighting, observations []model.Observation, settings *conf.Settings, clock clockwork.Clock) *Summary {
	now := clock.Now()

	byDate := make([]model.Sighting, len(sightings))
	copy(byDate, sightings)
	sort.SliceStable(byDate, func(i, j int) bool {
		return byDate[i].CapturedAt.Before(byDate[j].CapturedAt)
	})

	summary := &Summary{
		TotalSightings:    len(sightings),
		TotalObservations: len(observations),
		GeneratedAt:       now.Format("January 02, 2006"),
	}

	summary.UniqueSpecies = countUniqueSpecies(sightings, observations)
	computeCoverage(summary, byDate, now)
	summary.ByCategory = categoryHistogram(sightings)
	summary.BySeason = seasonHistogram(sightings, settings.Seasons)
	summary.ByMonth = monthHistogram(byDate)
	summary.ByWeather = fieldHistogram(sightings, func(s *model.Sighting) string {
		if s.Weather == nil {
			return model.UnknownConditions
		}
		return s.Weather.Conditions
	})
	summary.ByMoonPhase = fieldHistogram(sightings, func(s *model.Sighting) string {
		if s.Celestial == nil {
			return "Unknown"
		}
		return s.Celestial.MoonPhase
	})
	summary.DiscoveryCurve = discoveryCurve(byDate)
	computeThisMonth(summary, byDate, observations, now)
	computeSpeciesCounts(summary, sightings, observations)
	summary.FirstByCategory = firstByCategory(byDate)

	return summary
}

func countUniqueSpecies(sightings []model.Sighting, observations []model.Observation) int {
	species := make(map[string]struct{})
	for i := range sightings {
		species[strings.ToLower(sightings[i].CommonName)] = struct{}{}
	}
	for i := range observations {
		species[strings.ToLower(observations[i].CommonName)] = struct{}{}
	}
	return len(species)
}

func computeCoverage(summary *Summary, byDate []model.Sighting, now time.Time) {
	nowDay := truncateToDay(now)

	projectStart := nowDay
	if len(byDate) > 0 {
		projectStart = truncateToDay(byDate[0].CapturedAt)
	}

	elapsed := int(nowDay.Sub(projectStart).Hours()/24) + 1
	if elapsed < 1 {
		elapsed = 1
	}

	dates := make(map[string]struct{})
	for i := range byDate {
		dates[byDate[i].Date()] = struct{}{}
	}

	summary.DaysElapsed = elapsed
	summary.DaysWithSightings = len(dates)
	summary.DaysWithoutSightings = elapsed - len(dates)
	summary.CoveragePercent = int(math.Round(float64(len(dates)) / float64(elapsed) * 100))
}

// categoryHistogram counts distinct species per category, so a category with
// one busy species does not dwarf one with many species seen once each.
func categoryHistogram(sightings []model.Sighting) Histogram {
	perCategory := make(map[string]map[string]struct{})
	var order []string
	for i := range sightings {
		category := sightings[i].Category
		if _, ok := perCategory[category]; !ok {
			perCategory[category] = make(map[string]struct{})
			order = append(order, category)
		}
		perCategory[category][strings.ToLower(sightings[i].CommonName)] = struct{}{}
	}

	entries := make([]HistogramEntry, 0, len(order))
	for _, category := range order {
		entries = append(entries, HistogramEntry{Label: category, Count: len(perCategory[category])})
	}
	return descending(entries)
}

// seasonHistogram counts sightings per configured season, in configuration
// order, with zero entries for seasons not yet recorded.
func seasonHistogram(sightings []model.Sighting, seasons []conf.SeasonDefinition) Histogram {
	counts := make(map[string]int)
	for i := range sightings {
		counts[sightings[i].Season]++
	}

	entries := make([]HistogramEntry, 0, len(seasons))
	for _, season := range seasons {
		entries = append(entries, HistogramEntry{Label: season.Name, Count: counts[season.Name]})
	}

	return Histogram{Entries: entries, Max: maxCount(entries)}
}

func monthHistogram(byDate []model.Sighting) Histogram {
	counts := make(map[string]int)
	var order []string
	for i := range byDate {
		label := byDate[i].CapturedAt.Format(monthLabel)
		if _, ok := counts[label]; !ok {
			order = append(order, label)
		}
		counts[label]++
	}

	entries := make([]HistogramEntry, 0, len(order))
	for _, label := range order {
		entries = append(entries, HistogramEntry{Label: label, Count: counts[label]})
	}
	return Histogram{Entries: entries, Max: maxCount(entries)}
}

func fieldHistogram(sightings []model.Sighting, field func(*model.Sighting) string) Histogram {
	counts := make(map[string]int)
	var order []string
	for i := range sightings {
		value := field(&sightings[i])
		if value == "" {
			continue
		}
		if _, ok := counts[value]; !ok {
			order = append(order, value)
		}
		counts[value]++
	}

	entries := make([]HistogramEntry, 0, len(order))
	for _, label := range order {
		entries = append(entries, HistogramEntry{Label: label, Count: counts[label]})
	}
	return descending(entries)
}

// discoveryCurve is the cumulative count of distinct species by month, in
// chronological order.
func discoveryCurve(byDate []model.Sighting) Histogram {
	seen := make(map[string]struct{})
	cumulative := make(map[string]int)
	var order []string
	for i := range byDate {
		label := byDate[i].CapturedAt.Format(monthLabel)
		seen[strings.ToLower(byDate[i].CommonName)] = struct{}{}
		if _, ok := cumulative[label]; !ok {
			order = append(order, label)
		}
		cumulative[label] = len(seen)
	}

	entries := make([]HistogramEntry, 0, len(order))
	for _, label := range order {
		entries = append(entries, HistogramEntry{Label: label, Count: cumulative[label]})
	}
	return Histogram{Entries: entries, Max: maxCount(entries)}
}

func computeThisMonth(summary *Summary, byDate []model.Sighting, observations []model.Observation, now time.Time) {
	currentMonth := now.Format("2006-01")
	before := make(map[string]struct{})
	thisMonth := make(map[string]struct{})
	totalThisMonth := 0

	for i := range byDate {
		name := strings.ToLower(byDate[i].CommonName)
		if byDate[i].CapturedAt.Format("2006-01") == currentMonth {
			thisMonth[name] = struct{}{}
			totalThisMonth++
		} else {
			before[name] = struct{}{}
		}
	}
	for i := range observations {
		date, err := time.Parse("2006-01-02", observations[i].Date)
		if err != nil {
			continue
		}
		name := strings.ToLower(observations[i].CommonName)
		if date.Format("2006-01") == currentMonth {
			thisMonth[name] = struct{}{}
			totalThisMonth++
		} else {
			before[name] = struct{}{}
		}
	}

	newSpecies := 0
	for name := range thisMonth {
		if _, ok := before[name]; !ok {
			newSpecies++
		}
	}
	summary.NewSpeciesThisMonth = newSpecies
	summary.RepeatSightingsThisMonth = totalThisMonth - newSpecies
}

func computeSpeciesCounts(summary *Summary, sightings []model.Sighting, observations []model.Observation) {
	counts := make(map[string]int)
	var order []string
	add := func(name string) {
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}
	for i := range sightings {
		add(sightings[i].CommonName)
	}
	for i := range observations {
		add(observations[i].CommonName)
	}

	ranked := make([]SpeciesCount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, SpeciesCount{Name: name, Count: counts[name]})
	}
	// Stable sort keeps first-recorded species ahead on ties.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	top := ranked
	if len(top) > 5 {
		top = top[:5]
	}
	summary.TopSpecies = top

	for _, name := range order {
		if counts[name] == 1 {
			summary.SingleSightingSpecies = append(summary.SingleSightingSpecies, name)
		}
	}
}

func firstByCategory(byDate []model.Sighting) map[string]FirstSighting {
	first := make(map[string]FirstSighting)
	for i := range byDate {
		category := byDate[i].Category
		if _, ok := first[category]; ok {
			continue
		}
		first[category] = FirstSighting{
			ID:   byDate[i].ID,
			Name: byDate[i].CommonName,
			Date: byDate[i].CapturedAt.Format("Jan 02, 2006"),
		}
	}
	return first
}

func descending(entries []HistogramEntry) Histogram {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	return Histogram{Entries: entries, Max: maxCount(entries)}
}

func maxCount(entries []HistogramEntry) int {
	maxValue := 1
	for _, entry := range entries {
		if entry.Count > maxValue {
			maxValue = entry.Count
		}
	}
	return maxValue
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
