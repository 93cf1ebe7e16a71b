package meal

import (
	"fmt"
	"strconv"
	"strings"
)

// Price is an exact amount in euros and cents. The zero value is 0,00.
type Price struct {
	Euros uint32
	Cents uint8
}

// ParsePrice parses the upstream "eur,cc" notation. The euro part must be
// one or more ASCII digits and the cent part exactly two.
func ParsePrice(s string) (Price, error) {
	eur, cent, ok := strings.Cut(s, ",")
	if !ok || !allDigits(eur) || len(cent) != 2 || !allDigits(cent) {
		return Price{}, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	e, err := strconv.ParseUint(eur, 10, 32)
	if err != nil {
		return Price{}, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	// two digits can not exceed 99
	c, _ := strconv.ParseUint(cent, 10, 8)
	return Price{Euros: uint32(e), Cents: uint8(c)}, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats p the way upstream does, with zero padded cents.
func (p Price) String() string {
	return fmt.Sprintf("%d,%02d", p.Euros, p.Cents)
}

func (p Price) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Price) UnmarshalText(b []byte) error {
	v, err := ParsePrice(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MealPrice holds the three price tiers of a meal.
type MealPrice struct {
	Students Price `json:"students"`
	Staff    Price `json:"staff"`
	Guests   Price `json:"guests"`
}

// parseMealPrice parses all three tiers; a failure in any tier fails the
// whole price.
func parseMealPrice(students, staff, guests string) (*MealPrice, error) {
	var (
		mp  MealPrice
		err error
	)
	if mp.Students, err = ParsePrice(students); err != nil {
		return nil, err
	}
	if mp.Staff, err = ParsePrice(staff); err != nil {
		return nil, err
	}
	if mp.Guests, err = ParsePrice(guests); err != nil {
		return nil, err
	}
	return &mp, nil
}
