package dice

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidNotation is returned when a dice expression cannot be parsed.
var ErrInvalidNotation = errors.New("invalid dice notation")

// Type identifies a kind of die, e.g. "d6". Its face count comes from a
// FaceTable supplied by configuration.
type Type string

// FaceTable maps dice types to their face counts.
type FaceTable map[Type]int

// DefaultFaces is the table used when configuration does not provide one.
func DefaultFaces() FaceTable {
	return FaceTable{"d4": 4, "d6": 6, "d8": 8, "d10": 10, "d12": 12, "d20": 20}
}

// Faces returns the face count for t.
func (ft FaceTable) Faces(t Type) (int, bool) {
	n, ok := ft[t]
	if !ok || n < 1 {
		return 0, false
	}
	return n, true
}

// Types returns the known dice types ordered by face count.
func (ft FaceTable) Types() []Type {
	out := make([]Type, 0, len(ft))
	for t := range ft {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if ft[out[i]] == ft[out[j]] {
			return out[i] < out[j]
		}
		return ft[out[i]] < ft[out[j]]
	})
	return out
}

var deckRegex = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)

// ParseDeck turns deck notation such as "5d6 d20" or "2d6,d8" into an
// ordered list of dice types, one entry per die.
func ParseDeck(notation string) ([]Type, error) {
	fields := strings.FieldsFunc(notation, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty deck", ErrInvalidNotation)
	}

	var deck []Type
	for _, f := range fields {
		m := deckRegex.FindStringSubmatch(f)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNotation, f)
		}
		count := 1
		if m[1] != "" {
			count, _ = strconv.Atoi(m[1])
		}
		sides, _ := strconv.Atoi(m[2])
		if count < 1 || sides < 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNotation, f)
		}
		t := Type("d" + strconv.Itoa(sides))
		for i := 0; i < count; i++ {
			deck = append(deck, t)
		}
	}
	return deck, nil
}

var exprRegex = regexp.MustCompile(`(?i)^(\d*)d(\d+)([+-]\d+)?$`)

// RollResult contains a rolled expression total alongside the raw rolls.
type RollResult struct {
	Total    int
	RawRolls []int
	Modifier int
}

// RollExpr evaluates an expression of the form NdS[+/-M].
func RollExpr(expr string, r Roller) (RollResult, error) {
	raw := strings.ReplaceAll(expr, " ", "")
	m := exprRegex.FindStringSubmatch(raw)
	if m == nil {
		return RollResult{}, fmt.Errorf("%w: %q", ErrInvalidNotation, expr)
	}

	count := 1
	if m[1] != "" {
		count, _ = strconv.Atoi(m[1])
	}
	sides, _ := strconv.Atoi(m[2])
	if sides <= 0 {
		return RollResult{}, fmt.Errorf("%w: cannot roll a die with %d sides", ErrInvalidNotation, sides)
	}

	res := RollResult{}
	for i := 0; i < count; i++ {
		v := draw(r, sides)
		res.RawRolls = append(res.RawRolls, v)
		res.Total += v
	}
	if m[3] != "" {
		mod, err := strconv.Atoi(m[3])
		if err == nil {
			res.Modifier = mod
			res.Total += mod
		}
	}
	return res, nil
}
