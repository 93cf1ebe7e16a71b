package meal

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "mensaname": "Mensa HU Nord",
  "result": [
    {
      "tag": {"timestamp": 1718834400, "datum_iso": "2024-06-21", "wochentag": "Freitag"},
      "essen": [
        {"category": "Essen", "title": "Linsen", "title_clean": "Linsen-Dal",
         "description_clean": "  ", "preis_vorhanden": true,
         "preis1": "1,75", "preis2": "3,10", "preis3": "4,60",
         "kennzeichnungen": "0Ampel0,21a,30,999", "pfand": 0,
         "attributes": {"artikelId": "A-1", "produktionId": "x"}}
      ]
    },
    {
      "tag": {"datum_iso": "2024-06-20"},
      "essen": [
        {"category": "Essen", "title_clean": "Pasta", "description_clean": " mit Tomaten ",
         "preis_vorhanden": "1", "preis1": "1,5", "preis2": "3,10", "preis3": "4,60",
         "kennzeichnungen": "0Ampel1,0Ampel2", "attributes": {"artikelId": "A-2"}},
        {"category": "Salat", "title_clean": "Gurke", "description_clean": "",
         "preis_vorhanden": false, "preis1": "", "preis2": "", "preis3": "",
         "kennzeichnungen": "", "attributes": {"artikelId": 77}},
        {"category": "Essen", "title_clean": "Reis", "preis_vorhanden": 0,
         "kennzeichnungen": "2", "attributes": {"artikelId": "A-3"}}
      ]
    }
  ]
}`

func decodeSample(t *testing.T) Result {
	t.Helper()
	var res Result
	require.NoError(t, json.Unmarshal([]byte(samplePayload), &res))
	return res
}

func TestFromResult(t *testing.T) {
	log, buf := captureLogger()
	plan, err := FromResult(decodeSample(t), log)
	require.NoError(t, err)

	assert.Equal(t, "Mensa HU Nord", plan.Name())
	assert.Equal(t, []string{"2024-06-20", "2024-06-21"},
		[]string{plan.Dates()[0].String(), plan.Dates()[1].String()})

	thu, ok := plan.Day(date(2024, 6, 20))
	require.True(t, ok)
	assert.Equal(t, []string{"Essen", "Salat"}, thu.CategoryNames())

	essen := thu.Categories["Essen"]
	require.Len(t, essen, 2)
	assert.Equal(t, "Pasta", essen[0].Title)
	assert.Equal(t, "Reis", essen[1].Title)

	pasta := essen[0]
	require.NotNil(t, pasta.Description)
	assert.Equal(t, "mit Tomaten", *pasta.Description)
	assert.Nil(t, pasta.Price, "one bad tier drops the whole price")
	assert.Equal(t, Red, *pasta.Info.Rating)

	gurke := thu.Categories["Salat"][0]
	assert.Nil(t, gurke.Description)
	assert.Nil(t, gurke.Price)
	assert.Equal(t, "77", gurke.ID)

	fri, _ := plan.Day(date(2024, 6, 21))
	dal := fri.Categories["Essen"][0]
	assert.Equal(t, "Linsen-Dal", dal.Title)
	assert.Nil(t, dal.Description)
	require.NotNil(t, dal.Price)
	assert.Equal(t, Price{Euros: 1, Cents: 75}, dal.Price.Students)
	assert.Equal(t, Price{Euros: 3, Cents: 10}, dal.Price.Staff)
	assert.Equal(t, Price{Euros: 4, Cents: 60}, dal.Price.Guests)
	assert.Equal(t, Green, *dal.Info.Rating)
	assert.Equal(t, Set[Allergen]{Milk, Wheat}, dal.Info.Allergens)
	assert.Equal(t, "A-1", dal.ID)

	logged := buf.String()
	assert.Contains(t, logged, "dropping unparseable price")
	assert.Contains(t, logged, "rating already set")
}

func TestFromResultBadDate(t *testing.T) {
	res := decodeSample(t)
	res.Days[1].Tag.ISO = "20.06.2024"

	_, err := FromResult(res, nil)
	var dpe *DateParseError
	require.True(t, errors.As(err, &dpe))
	assert.Equal(t, "20.06.2024", dpe.Value)
}

func TestFromResultDuplicateDateKeepsFirst(t *testing.T) {
	res := decodeSample(t)
	res.Days[0].Tag.ISO = "2024-06-20"

	log, buf := captureLogger()
	plan, err := FromResult(res, log)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Len())

	d, _ := plan.Day(date(2024, 6, 20))
	assert.Equal(t, "Linsen-Dal", d.Categories["Essen"][0].Title)
	assert.Contains(t, buf.String(), "duplicate day")
}

func TestFlagDecoding(t *testing.T) {
	for in, want := range map[string]bool{
		`true`: true, `false`: false, `1`: true, `0`: false,
		`"1"`: true, `"0"`: false, `""`: false, `null`: false, `"yes"`: true,
	} {
		var f Flag
		require.NoError(t, json.Unmarshal([]byte(in), &f), in)
		assert.Equal(t, want, bool(f), in)
	}

	var f Flag
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &f))
}
