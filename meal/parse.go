package meal

import (
	"log/slog"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// FromResult converts an upstream payload into a Plan. Only an unparseable
// day date fails the conversion; bad prices and duplicate ratings are
// logged as anomalies and the offending field is left out.
func FromResult(res Result, log *slog.Logger) (*Plan, error) {
	if log == nil {
		log = slog.Default()
	}
	days := make([]Day, 0, len(res.Days))
	for _, rd := range res.Days {
		date, err := ParseDate(string(rd.Tag.ISO))
		if err != nil {
			return nil, err
		}
		day := NewDay(date)
		for _, rm := range rd.Meals {
			day.Add(string(rm.Category), parseMeal(rm, log.With("date", date.String())))
		}
		days = append(days, day)
	}

	slices.SortStableFunc(days, func(a, b Day) int { return compareDates(a.Date, b.Date) })

	plan := NewPlan(res.Name)
	for _, d := range days {
		if !plan.AddDay(d) {
			log.Warn("duplicate day in upstream payload, keeping first",
				AnomalyKey, true, "date", d.Date.String())
		}
	}
	return plan, nil
}

func parseMeal(rm RawMeal, log *slog.Logger) Meal {
	m := Meal{
		Title: string(rm.TitleClean),
		ID:    string(rm.Attributes.ArticleID),
	}
	if m.Title == "" {
		m.Title = strings.TrimSpace(string(rm.Title))
	}
	if desc := strings.TrimSpace(string(rm.DescriptionClean)); desc != "" {
		m.Description = &desc
	}

	log = log.With("meal", m.ID)
	if rm.PriceAvailable {
		p, err := parseMealPrice(string(rm.Price1), string(rm.Price2), string(rm.Price3))
		if err != nil {
			log.Warn("dropping unparseable price", AnomalyKey, true, "error", err)
		} else {
			m.Price = p
		}
	}
	m.Info = ParseInfo(string(rm.Markings), log)
	return m
}

// ParseDate parses a strict YYYY-MM-DD date.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, &DateParseError{Value: s, Err: err}
	}
	return d, nil
}
