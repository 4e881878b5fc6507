package keywords

import (
	"fmt"
	"strconv"
	"strings"
)

// MatchType controls how broadly a keyword matches user queries.
type MatchType int

const (
	MatchExact MatchType = iota
	MatchPhrase
	MatchBroad
)

func (m MatchType) String() string {
	switch m {
	case MatchExact:
		return "EXACT"
	case MatchPhrase:
		return "PHRASE"
	case MatchBroad:
		return "BROAD"
	}
	return "UNKNOWN"
}

// ParseMatchType converts a string such as "EXACT" into a MatchType.
func ParseMatchType(s string) (MatchType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EXACT":
		return MatchExact, nil
	case "PHRASE":
		return MatchPhrase, nil
	case "BROAD":
		return MatchBroad, nil
	}
	return 0, fmt.Errorf("invalid match type: %s", s)
}

// Keyword is a search term plus a match type. It is a value type: equality is
// by (Text, MatchType) and it is used as a map key everywhere.
type Keyword struct {
	Text      string
	MatchType MatchType
}

func NewKeyword(text string, matchType MatchType) Keyword {
	return Keyword{Text: text, MatchType: matchType}
}

func (k Keyword) String() string {
	return k.Text + "[" + k.MatchType.String() + "]"
}

// Money is a monetary amount in micro-units (1,000,000 micros = 1 unit).
type Money int64

const microUnits = 1000000

// MoneyFromUnits converts a base-unit amount (e.g. 5.0 USD) into micros.
func MoneyFromUnits(units float64) Money {
	return Money(units * microUnits)
}

// ParseMoney parses a base-unit amount like "5.0" into micros.
func ParseMoney(s string) (Money, error) {
	units, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money amount: %s", s)
	}
	return MoneyFromUnits(units), nil
}

// Units returns the amount in base units.
func (m Money) Units() float64 {
	return float64(m) / microUnits
}

func (m Money) String() string {
	return strconv.FormatFloat(m.Units(), 'f', 2, 64)
}

// CriterionKind distinguishes the campaign targeting criteria we support.
type CriterionKind string

const (
	CriterionLocation CriterionKind = "location"
	CriterionLanguage CriterionKind = "language"
)

// Criterion is an additional campaign targeting restriction (a geo location
// or a language), identified by the ad platform's numeric id.
type Criterion struct {
	Kind CriterionKind
	ID   int64
}
