package meal

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestParseInfoCodes(t *testing.T) {
	log, buf := captureLogger()
	info := ParseInfo("21a,0Ampel1,2,999,21a, 30", log)

	require.NotNil(t, info.Rating)
	assert.Equal(t, Yellow, *info.Rating)
	assert.Equal(t, Set[Allergen]{Milk, Wheat}, info.Allergens)
	assert.Equal(t, Set[Additive]{Pork}, info.Additives)
	assert.Empty(t, info.Attributes)
	assert.Empty(t, buf.String(), "unknown and duplicate set codes must not log")
}

func TestParseInfoDuplicateRatingLastWins(t *testing.T) {
	log, buf := captureLogger()
	info := ParseInfo("0Ampel0,0Ampel2", log)

	require.NotNil(t, info.Rating)
	assert.Equal(t, Red, *info.Rating)
	assert.Contains(t, buf.String(), "anomaly=true")
	assert.Contains(t, buf.String(), "previous=green")
}

func TestParseInfoEmpty(t *testing.T) {
	info := ParseInfo("", nil)
	assert.Nil(t, info.Rating)
	assert.Empty(t, info.Additives)
	assert.Empty(t, info.Allergens)
}

func TestCodeTableSlotsAreDisjoint(t *testing.T) {
	for k, c := range codeTable {
		set := 0
		for _, v := range []string{string(c.rating), string(c.additive), string(c.allergen)} {
			if v != "" {
				set++
			}
		}
		assert.Equal(t, 1, set, "code %q", k)
	}
}

func TestSetJSON(t *testing.T) {
	var s Set[Allergen]
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	require.NoError(t, json.Unmarshal([]byte(`["soy","eggs","soy"]`), &s))
	assert.Equal(t, Set[Allergen]{Eggs, Soy}, s)
	assert.True(t, s.Has(Soy))
	assert.False(t, s.Has(Fish))
}

func TestInfoCloneIsIndependent(t *testing.T) {
	info := ParseInfo("0Ampel0,23", nil)
	c := info.clone()
	c.Allergens.Add(Fish)
	*c.Rating = Red

	assert.False(t, info.Allergens.Has(Fish))
	assert.Equal(t, Green, *info.Rating)
	assert.Equal(t, Red, *c.Rating)
}
