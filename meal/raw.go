package meal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Result is the upstream API payload. Only the fields that feed the domain
// model are decoded; everything else upstream sends is ignored.
type Result struct {
	Days []RawDay `json:"result"`
	Name string   `json:"mensaname"`
}

// RawDay is one upstream day record.
type RawDay struct {
	Tag   RawDate   `json:"tag"`
	Meals []RawMeal `json:"essen"`
}

// RawDate carries the ISO date of a RawDay.
type RawDate struct {
	ISO Text `json:"datum_iso"`
}

// RawMeal is one upstream meal record.
type RawMeal struct {
	Category         Text          `json:"category"`
	Title            Text          `json:"title"`
	TitleClean       Text          `json:"title_clean"`
	DescriptionClean Text          `json:"description_clean"`
	PriceAvailable   Flag          `json:"preis_vorhanden"`
	Price1           Text          `json:"preis1"`
	Price2           Text          `json:"preis2"`
	Price3           Text          `json:"preis3"`
	Markings         Text          `json:"kennzeichnungen"`
	Attributes       RawAttributes `json:"attributes"`
}

// RawAttributes holds upstream article identifiers.
type RawAttributes struct {
	ArticleID Text `json:"artikelId"`
}

// Text is a string that also accepts JSON numbers, booleans and null.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(b)
	}
	return nil
}

// Flag is a boolean that also accepts 0/1 and their string forms.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var t Text
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "", "0", "false", "no":
		*f = false
	case "1", "true", "yes":
		*f = true
	default:
		v, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return fmt.Errorf("meal: invalid flag %q", string(t))
		}
		*f = v != 0
	}
	return nil
}
