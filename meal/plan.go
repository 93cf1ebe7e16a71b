package meal

import (
	"encoding/json"
	"iter"
	"slices"

	"cloud.google.com/go/civil"
)

// Plan is one facility's meal plan: a display name and a day sequence that
// is strictly sorted by date and never holds the same date twice.
//
// A Plan is not safe for concurrent mutation.
type Plan struct {
	name string
	days []Day
}

// NewPlan returns an empty plan for the facility display name.
func NewPlan(name string) *Plan {
	return &Plan{name: name}
}

// Name returns the facility display name.
func (p *Plan) Name() string { return p.name }

// Len returns the number of days in the plan.
func (p *Plan) Len() int { return len(p.days) }

func (p *Plan) search(date civil.Date) (int, bool) {
	return slices.BinarySearchFunc(p.days, date, func(d Day, t civil.Date) int {
		return compareDates(d.Date, t)
	})
}

// AddDay inserts day at its date position. If the date is already present
// the existing day is kept and AddDay returns false.
func (p *Plan) AddDay(day Day) bool {
	p.mustBeSorted()
	i, found := p.search(day.Date)
	if found {
		return false
	}
	p.days = slices.Insert(p.days, i, day)
	return true
}

// RemoveDay deletes the day for date and reports whether it was present.
func (p *Plan) RemoveDay(date civil.Date) bool {
	p.mustBeSorted()
	i, found := p.search(date)
	if !found {
		return false
	}
	p.days = slices.Delete(p.days, i, i+1)
	return true
}

// Day looks up the day for date.
func (p *Plan) Day(date civil.Date) (Day, bool) {
	i, found := p.search(date)
	if !found {
		return Day{}, false
	}
	return p.days[i], true
}

// All yields the days in ascending date order.
func (p *Plan) All() iter.Seq[Day] {
	return func(yield func(Day) bool) {
		for _, d := range p.days {
			if !yield(d) {
				return
			}
		}
	}
}

// Dates returns the plan's dates in ascending order.
func (p *Plan) Dates() []civil.Date {
	out := make([]civil.Date, len(p.days))
	for i, d := range p.days {
		out[i] = d.Date
	}
	return out
}

// Clone returns a deep copy of p.
func (p *Plan) Clone() *Plan {
	c := &Plan{name: p.name, days: make([]Day, len(p.days))}
	for i, d := range p.days {
		c.days[i] = d.Clone()
	}
	return c
}

// mustBeSorted panics when the day sequence lost its ordering, which can
// only happen through a bug in this package.
func (p *Plan) mustBeSorted() {
	for i := 1; i < len(p.days); i++ {
		if compareDates(p.days[i-1].Date, p.days[i].Date) >= 0 {
			panic("meal: plan days out of order at " + p.days[i].Date.String())
		}
	}
}

type planJSON struct {
	Name string `json:"mensa_name"`
	Days []Day  `json:"days"`
}

func (p *Plan) MarshalJSON() ([]byte, error) {
	days := p.days
	if days == nil {
		days = []Day{}
	}
	return json.Marshal(planJSON{Name: p.name, Days: days})
}

// UnmarshalJSON decodes a plan and restores the ordering invariant. For
// duplicate dates the first occurrence wins.
func (p *Plan) UnmarshalJSON(b []byte) error {
	var raw planJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Plan{name: raw.Name}
	slices.SortStableFunc(raw.Days, func(a, b Day) int { return compareDates(a.Date, b.Date) })
	for _, d := range raw.Days {
		p.AddDay(d)
	}
	return nil
}
