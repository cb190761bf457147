package dice

import (
	"fmt"
	"strconv"
	"strings"

	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
)

// Notation is a parsed dice expression such as "2d6+3"
type Notation struct {
	Count int
	Sides int
	Bonus int
}

// ParseNotation parses "NdS", "NdS+B" and "NdS-B"
func ParseNotation(s string) (Notation, error) {
	expr := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	if expr == "" {
		return Notation{}, dnderr.InvalidArgument("empty dice notation")
	}

	var n Notation
	sign := 1
	if idx := strings.IndexAny(expr, "+-"); idx >= 0 {
		if expr[idx] == '-' {
			sign = -1
		}
		bonus, err := strconv.Atoi(expr[idx+1:])
		if err != nil {
			return Notation{}, dnderr.InvalidArgumentf("invalid dice bonus in %q", s)
		}
		n.Bonus = sign * bonus
		expr = expr[:idx]
	}

	parts := strings.Split(expr, "d")
	if len(parts) != 2 {
		return Notation{}, dnderr.InvalidArgumentf("invalid dice notation %q", s)
	}

	count := 1
	if parts[0] != "" {
		c, err := strconv.Atoi(parts[0])
		if err != nil {
			return Notation{}, dnderr.InvalidArgumentf("invalid dice count in %q", s)
		}
		count = c
	}
	sides, err := strconv.Atoi(parts[1])
	if err != nil {
		return Notation{}, dnderr.InvalidArgumentf("invalid dice size in %q", s)
	}
	if count < 1 || sides < 1 {
		return Notation{}, dnderr.InvalidArgumentf("invalid dice notation %q", s)
	}

	n.Count = count
	n.Sides = sides
	return n, nil
}

// String renders the notation back to "NdS+B" form
func (n Notation) String() string {
	switch {
	case n.Bonus > 0:
		return fmt.Sprintf("%dd%d+%d", n.Count, n.Sides, n.Bonus)
	case n.Bonus < 0:
		return fmt.Sprintf("%dd%d%d", n.Count, n.Sides, n.Bonus)
	default:
		return fmt.Sprintf("%dd%d", n.Count, n.Sides)
	}
}

// RollNotation parses and rolls an expression with the given roller
func RollNotation(roller Roller, s string) (*RollResult, error) {
	n, err := ParseNotation(s)
	if err != nil {
		return nil, err
	}
	return roller.Roll(n.Count, n.Sides, n.Bonus)
}

func (r *RollResult) String() string {
	compact := strings.ReplaceAll(fmt.Sprintf("%v", r.Rolls), " ", "")
	return fmt.Sprintf("**%d** : %s", r.Total, compact)
}
