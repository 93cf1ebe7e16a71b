package meal

import (
	"encoding/json"
	"math/rand"
	"slices"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m int, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func dayWith(d civil.Date, title string) Day {
	day := NewDay(d)
	day.Add("Main", Meal{Title: title})
	return day
}

func assertStrictlySorted(t *testing.T, p *Plan) {
	t.Helper()
	dates := p.Dates()
	for i := 1; i < len(dates); i++ {
		require.True(t, dates[i-1].Before(dates[i]), "dates not strictly sorted: %v", dates)
	}
}

func TestAddDayKeepsOrderAndIgnoresDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := NewPlan("Mensa Nord")
	seen := map[civil.Date]string{}

	for i := range 200 {
		d := date(2024, 3, 1+rng.Intn(28))
		title := "meal-" + string(rune('a'+i%26))
		added := p.AddDay(dayWith(d, title))
		if _, dup := seen[d]; dup {
			assert.False(t, added)
		} else {
			assert.True(t, added)
			seen[d] = title
		}
	}

	assertStrictlySorted(t, p)
	assert.Equal(t, len(seen), p.Len())
	for d, title := range seen {
		got, ok := p.Day(d)
		require.True(t, ok)
		assert.Equal(t, title, got.Categories["Main"][0].Title, "duplicate insert must not replace %s", d)
	}
}

func TestRemoveDay(t *testing.T) {
	p := NewPlan("x")
	for _, d := range []int{5, 1, 3} {
		p.AddDay(dayWith(date(2024, 1, d), "m"))
	}

	assert.False(t, p.RemoveDay(date(2024, 1, 2)))
	assert.Equal(t, 3, p.Len())

	assert.True(t, p.RemoveDay(date(2024, 1, 3)))
	_, ok := p.Day(date(2024, 1, 3))
	assert.False(t, ok)
	assert.Equal(t, []civil.Date{date(2024, 1, 1), date(2024, 1, 5)}, p.Dates())
	assertStrictlySorted(t, p)
}

func TestDayLookupMiss(t *testing.T) {
	p := NewPlan("x")
	_, ok := p.Day(date(2024, 1, 1))
	assert.False(t, ok)
}

func TestAllEnumeratesAscending(t *testing.T) {
	p := NewPlan("x")
	for _, d := range []int{9, 2, 4} {
		p.AddDay(dayWith(date(2024, 2, d), "m"))
	}
	var got []int
	for d := range p.All() {
		got = append(got, d.Date.Day)
	}
	assert.Equal(t, []int{2, 4, 9}, got)
}

func TestCloneIsDeep(t *testing.T) {
	p := NewPlan("x")
	p.AddDay(dayWith(date(2024, 2, 1), "soup"))

	c := p.Clone()
	d, _ := c.Day(date(2024, 2, 1))
	d.Categories["Main"][0].Title = "changed"
	c.AddDay(dayWith(date(2024, 2, 2), "m"))

	orig, _ := p.Day(date(2024, 2, 1))
	assert.Equal(t, "soup", orig.Categories["Main"][0].Title)
	assert.Equal(t, 1, p.Len())
}

func TestPlanJSONRestoresInvariant(t *testing.T) {
	in := `{"mensa_name":"Mensa","days":[
		{"date":"2024-01-03","categories":{"Main":[{"title":"c"}]}},
		{"date":"2024-01-01","categories":{"Main":[{"title":"a"}]}},
		{"date":"2024-01-03","categories":{"Main":[{"title":"dup"}]}}
	]}`
	var p Plan
	require.NoError(t, json.Unmarshal([]byte(in), &p))

	assert.Equal(t, "Mensa", p.Name())
	assert.Equal(t, []civil.Date{date(2024, 1, 1), date(2024, 1, 3)}, p.Dates())
	d, _ := p.Day(date(2024, 1, 3))
	assert.Equal(t, "c", d.Categories["Main"][0].Title)

	out, err := json.Marshal(&p)
	require.NoError(t, err)
	var back Plan
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, slices.Equal(p.Dates(), back.Dates()))
}

func TestEmptyPlanMarshalsDaysArray(t *testing.T) {
	b, err := json.Marshal(NewPlan("empty"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"mensa_name":"empty","days":[]}`, string(b))
}
