package meal

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
)

// Rating is the traffic-light health rating attached to a meal.
type Rating string

const (
	Green  Rating = "green"
	Yellow Rating = "yellow"
	Red    Rating = "red"
)

// Additive is a declared food additive.
type Additive string

const (
	Pork                Additive = "pork"
	Alcohol             Additive = "alcohol"
	FlavourEnhancer     Additive = "flavour_enhancer"
	Waxed               Additive = "waxed"
	Preserved           Additive = "preserved"
	Antioxidants        Additive = "antioxidants"
	Coloring            Additive = "coloring"
	Phosphate           Additive = "phosphate"
	Darkened            Additive = "darkened"
	PhenylalanineSource Additive = "phenylalanine_source"
	Sweeteners          Additive = "sweeteners"
	SmallFishParts      Additive = "small_fish_parts"
	Caffeine            Additive = "caffeine"
	Chitin              Additive = "chitin"
	Sulfur              Additive = "sulfur"
	LaxativeEffect      Additive = "laxative_effect"
)

// Allergen is a declared allergen.
type Allergen string

const (
	Gluten      Allergen = "gluten"
	Wheat       Allergen = "wheat"
	Rye         Allergen = "rye"
	Barley      Allergen = "barley"
	Oats        Allergen = "oats"
	Spelt       Allergen = "spelt"
	Khorasan    Allergen = "khorasan"
	Crustaceans Allergen = "crustaceans"
	Eggs        Allergen = "eggs"
	Fish        Allergen = "fish"
	Peanuts     Allergen = "peanuts"
	Nuts        Allergen = "nuts"
	Almonds     Allergen = "almonds"
	Hazelnuts   Allergen = "hazelnuts"
	Walnuts     Allergen = "walnuts"
	Cashews     Allergen = "cashews"
	Pecans      Allergen = "pecans"
	BrazilNuts  Allergen = "brazil_nuts"
	Pistachios  Allergen = "pistachios"
	Macadamia   Allergen = "macadamia"
	Celery      Allergen = "celery"
	Soy         Allergen = "soy"
	Mustard     Allergen = "mustard"
	Milk        Allergen = "milk"
	Sesame      Allergen = "sesame"
	Sulphites   Allergen = "sulphites"
	Lupin       Allergen = "lupin"
	Molluscs    Allergen = "molluscs"
	NitriteSalt Allergen = "nitrite_salt"
	Yeast       Allergen = "yeast"
)

// Attribute is a sustainability or diet attribute.
type Attribute string

const (
	Vegan              Attribute = "vegan"
	Vegetarian         Attribute = "vegetarian"
	Fairtrade          Attribute = "fairtrade"
	ClimateFood        Attribute = "climate_food"
	SustainableFarming Attribute = "sustainable_farming"
	SustainableFishing Attribute = "sustainable_fishing"
	Frozen             Attribute = "frozen"
)

// Set is a sorted, duplicate free collection of enum values.
type Set[T ~string] []T

// Add inserts v and reports whether it was not present before.
func (s *Set[T]) Add(v T) bool {
	i, found := slices.BinarySearch(*s, v)
	if found {
		return false
	}
	*s = slices.Insert(*s, i, v)
	return true
}

// Has reports whether v is in the set.
func (s Set[T]) Has(v T) bool {
	_, found := slices.BinarySearch(s, v)
	return found
}

func (s Set[T]) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]T(s))
}

func (s *Set[T]) UnmarshalJSON(b []byte) error {
	var vals []T
	if err := json.Unmarshal(b, &vals); err != nil {
		return err
	}
	*s = nil
	for _, v := range vals {
		s.Add(v)
	}
	return nil
}

// Info bundles the coded attributes of a meal.
type Info struct {
	Rating     *Rating        `json:"rating"`
	Additives  Set[Additive]  `json:"additives"`
	Allergens  Set[Allergen]  `json:"allergens"`
	Attributes Set[Attribute] `json:"attributes"`
}

func (i Info) clone() Info {
	c := Info{
		Additives:  slices.Clone(i.Additives),
		Allergens:  slices.Clone(i.Allergens),
		Attributes: slices.Clone(i.Attributes),
	}
	if i.Rating != nil {
		r := *i.Rating
		c.Rating = &r
	}
	return c
}

// code is one entry of the upstream marking table. Exactly one field is set.
type code struct {
	rating   Rating
	additive Additive
	allergen Allergen
}

var codeTable = map[string]code{
	"0Ampel0": {rating: Green},
	"0Ampel1": {rating: Yellow},
	"0Ampel2": {rating: Red},

	"2":  {additive: Pork},
	"3":  {additive: Alcohol},
	"4":  {additive: FlavourEnhancer},
	"5":  {additive: Waxed},
	"6":  {additive: Preserved},
	"7":  {additive: Antioxidants},
	"8":  {additive: Coloring},
	"9":  {additive: Phosphate},
	"10": {additive: Darkened},
	"12": {additive: PhenylalanineSource},
	"13": {additive: Sweeteners},
	"14": {additive: SmallFishParts},
	"16": {additive: Caffeine},
	"17": {additive: Chitin},
	"19": {additive: Sulfur},
	"20": {additive: LaxativeEffect},

	"21":  {allergen: Gluten},
	"21a": {allergen: Wheat},
	"21b": {allergen: Rye},
	"21c": {allergen: Barley},
	"21d": {allergen: Oats},
	"21e": {allergen: Spelt},
	"21f": {allergen: Khorasan},
	"22":  {allergen: Crustaceans},
	"23":  {allergen: Eggs},
	"24":  {allergen: Fish},
	"25":  {allergen: Peanuts},
	"26":  {allergen: Nuts},
	"26a": {allergen: Almonds},
	"26b": {allergen: Hazelnuts},
	"26c": {allergen: Walnuts},
	"26d": {allergen: Cashews},
	"26e": {allergen: Pecans},
	"26f": {allergen: BrazilNuts},
	"26g": {allergen: Pistachios},
	"26h": {allergen: Macadamia},
	"27":  {allergen: Celery},
	"28":  {allergen: Soy},
	"29":  {allergen: Mustard},
	"30":  {allergen: Milk},
	"31":  {allergen: Sesame},
	"32":  {allergen: Sulphites},
	"33":  {allergen: Lupin},
	"34":  {allergen: Molluscs},
	"35":  {allergen: NitriteSalt},
	"36":  {allergen: Yeast},
}

// ParseInfo maps a comma separated marking string onto an Info. Unknown
// codes are dropped. A second rating replaces the first and is logged as an
// anomaly.
func ParseInfo(codes string, log *slog.Logger) Info {
	if log == nil {
		log = slog.Default()
	}
	var info Info
	for raw := range strings.SplitSeq(codes, ",") {
		c, ok := codeTable[strings.TrimSpace(raw)]
		if !ok {
			continue
		}
		switch {
		case c.rating != "":
			if info.Rating != nil {
				log.Warn("rating already set, overwriting",
					AnomalyKey, true, "previous", *info.Rating, "rating", c.rating)
			}
			r := c.rating
			info.Rating = &r
		case c.additive != "":
			info.Additives.Add(c.additive)
		case c.allergen != "":
			info.Allergens.Add(c.allergen)
		}
	}
	return info
}
