// Package meal holds the normalized cafeteria meal-plan model and the
// parsing that turns the upstream API payload into it.
package meal

import (
	"maps"
	"slices"

	"cloud.google.com/go/civil"
)

// Meal is a single dish offered on a day.
type Meal struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Price       *MealPrice `json:"price"`
	Info        Info       `json:"info"`
	// ID is the upstream article id. Clients use it to diff plans.
	ID string `json:"id"`
}

func (m Meal) clone() Meal {
	c := m
	if m.Description != nil {
		d := *m.Description
		c.Description = &d
	}
	if m.Price != nil {
		p := *m.Price
		c.Price = &p
	}
	c.Info = m.Info.clone()
	return c
}

// Day is one date of a facility plan. Meals are grouped by their upstream
// category name, in upstream order.
type Day struct {
	Date       civil.Date        `json:"date"`
	Categories map[string][]Meal `json:"categories"`
}

// NewDay returns an empty day for date.
func NewDay(date civil.Date) Day {
	return Day{Date: date, Categories: make(map[string][]Meal)}
}

// Add appends m to category.
func (d *Day) Add(category string, m Meal) {
	if d.Categories == nil {
		d.Categories = make(map[string][]Meal)
	}
	d.Categories[category] = append(d.Categories[category], m)
}

// CategoryNames returns the day's categories in lexical order.
func (d Day) CategoryNames() []string {
	return slices.Sorted(maps.Keys(d.Categories))
}

// Clone returns a deep copy of d.
func (d Day) Clone() Day {
	c := Day{Date: d.Date, Categories: make(map[string][]Meal, len(d.Categories))}
	for name, meals := range d.Categories {
		cp := make([]Meal, len(meals))
		for i, m := range meals {
			cp[i] = m.clone()
		}
		c.Categories[name] = cp
	}
	return c
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
