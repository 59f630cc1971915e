// Package catalogdomain holds the pure game rules: the attribute schema of a
// game and the per-attribute comparison between a guessed and a target item.
package catalogdomain

// Hint is the directional hint attached to a numeric attribute.
type Hint string

const (
	HintNone    Hint = ""
	HintHigher  Hint = "higher"
	HintLower   Hint = "lower"
	HintUnknown Hint = "unknown"
)

const (
	ArrowUp   = "▲"
	ArrowDown = "▼"
)

// Schema is the comparison configuration of a game.
type Schema struct {
	// Attributes in display order.
	Attributes []string
	Numeric    []string
	// Groups lists attribute families compared cross-wise (e.g. type1/type2).
	Groups   [][]string
	Defaults map[string]any
}

// Item is a game item as seen by the comparator.
type Item struct {
	ID   int64
	Name string
	Data map[string]any
}

// AttributeFeedback is the comparison result of one attribute.
type AttributeFeedback struct {
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
	Correct   bool   `json:"correct"`
	Partial   bool   `json:"partial"`
	Hint      Hint   `json:"hint"`
	Arrow     string `json:"arrow"`
}

// IsCorrect reports whether guess is the target. Identity is the only win
// condition; two items sharing every visible attribute are still different.
func IsCorrect(guess, target Item) bool {
	return guess.ID == target.ID
}

// Compare produces one feedback entry per schema attribute, in schema order.
func Compare(schema Schema, guess, target Item) []AttributeFeedback {
	numeric := toSet(schema.Numeric)
	siblings := siblingIndex(schema.Groups)

	resolve := func(it Item, attr string) AttributeValue {
		return ResolveValue(it.Data[attr], schema.Defaults[attr], numeric[attr])
	}

	out := make([]AttributeFeedback, 0, len(schema.Attributes))
	for _, attr := range schema.Attributes {
		g := resolve(guess, attr)
		t := resolve(target, attr)

		fb := AttributeFeedback{Attribute: attr, Value: g.Raw()}
		switch gv := g.(type) {
		case Numeric:
			compareNumeric(&fb, gv, t.(Numeric))
		default:
			compareTokens(&fb, g, t)
			if !fb.Correct && !fb.Partial {
				for _, sib := range siblings[attr] {
					if intersects(g.Tokens(), resolve(target, sib).Tokens()) {
						fb.Partial = true
						break
					}
				}
			}
		}
		out = append(out, fb)
	}
	return out
}

func compareNumeric(fb *AttributeFeedback, g, t Numeric) {
	switch {
	// An unparsable side never matches, even against an identical string.
	case !g.Valid || !t.Valid:
		fb.Hint = HintUnknown
	case g.Value == t.Value:
		fb.Correct = true
	case g.Value < t.Value:
		fb.Hint, fb.Arrow = HintHigher, ArrowUp
	default:
		fb.Hint, fb.Arrow = HintLower, ArrowDown
	}
}

func compareTokens(fb *AttributeFeedback, g, t AttributeValue) {
	gs, ts := toSet(g.Tokens()), toSet(t.Tokens())
	if len(gs) == 0 || len(ts) == 0 {
		fb.Correct = stringify(g.Raw()) == stringify(t.Raw())
		return
	}
	if equalSets(gs, ts) {
		fb.Correct = true
		return
	}
	for tok := range gs {
		if ts[tok] {
			fb.Partial = true
			return
		}
	}
}

func siblingIndex(groups [][]string) map[string][]string {
	idx := make(map[string][]string)
	for _, group := range groups {
		for _, a := range group {
			for _, b := range group {
				if a != b {
					idx[a] = append(idx[a], b)
				}
			}
		}
	}
	return idx
}

func toSet(vals []string) map[string]bool {
	s := make(map[string]bool, len(vals))
	for _, v := range vals {
		s[v] = true
	}
	return s
}

func equalSets(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func intersects(a, b []string) bool {
	set := toSet(b)
	for _, v := range a {
		if set[v] {
			return true
		}
	}
	return false
}
