// Package cache holds the in-process caches of the meal-plan engine: the
// keyed plan Collection and a ristretto backed DayCache for days served by
// the durable store.
package cache

import (
	"iter"
	"net/url"
	"strings"

	"github.com/Keksclan/goMensaSquirrel/meal"
)

// DefaultLanguage is used when a caller does not name a language.
const DefaultLanguage = "en"

// Pair identifies one cached plan.
type Pair struct {
	Facility string
	Lang     string
}

func (p Pair) String() string { return Key(p.Facility, p.Lang) }

// NormalizeLang returns lang or DefaultLanguage when lang is blank.
func NormalizeLang(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

// Key encodes a facility and language as "{lang};{facility}". The language
// is path escaped so that the first ';' always separates the two parts.
func Key(facility, lang string) string {
	return url.PathEscape(NormalizeLang(lang)) + ";" + facility
}

// ParseKey decodes a key produced by Key.
func ParseKey(key string) (Pair, bool) {
	lang, facility, ok := strings.Cut(key, ";")
	if !ok {
		return Pair{}, false
	}
	lang, err := url.PathUnescape(lang)
	if err != nil {
		return Pair{}, false
	}
	return Pair{Facility: facility, Lang: lang}, true
}

// Collection maps (facility, language) pairs to plans. It is not safe for
// concurrent use; the owner guards it.
type Collection struct {
	plans map[string]*meal.Plan
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{plans: make(map[string]*meal.Plan)}
}

// Get returns the plan for the pair.
func (c *Collection) Get(facility, lang string) (*meal.Plan, bool) {
	p, ok := c.plans[Key(facility, lang)]
	return p, ok
}

// Insert stores plan under the pair and returns the plan it replaced.
func (c *Collection) Insert(facility, lang string, plan *meal.Plan) (*meal.Plan, bool) {
	k := Key(facility, lang)
	prior, ok := c.plans[k]
	c.plans[k] = plan
	return prior, ok
}

// Len returns the number of cached plans.
func (c *Collection) Len() int { return len(c.plans) }

// Pairs yields every cached pair by decoding the stored keys. Order is
// unspecified. The sequence must not be consumed while the collection is
// being modified.
func (c *Collection) Pairs() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for k := range c.plans {
			p, ok := ParseKey(k)
			if !ok {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}
