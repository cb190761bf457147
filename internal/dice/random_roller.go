package dice

import (
	"math/rand"
	"sync"
	"time"

	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
)

// randomRoller implements Roller on top of a private math/rand source
type randomRoller struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return NewSeededRoller(time.Now().UnixNano())
}

// NewSeededRoller creates a roller whose sequence is fixed by seed
func NewSeededRoller(seed int64) Roller {
	return &randomRoller{rnd: rand.New(rand.NewSource(seed))}
}

func (r *randomRoller) intn(sides int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(sides) + 1
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, dnderr.InvalidArgument("invalid dice count")
	}
	if sides < 1 {
		return nil, dnderr.InvalidArgument("invalid dice size")
	}

	rolls := make([]int, count)
	rawTotal := 0
	for i := range rolls {
		rolls[i] = r.intn(sides)
		rawTotal += rolls[i]
	}

	result := &RollResult{
		Total:    rawTotal + bonus,
		Rolls:    rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
		RawTotal: rawTotal,
	}

	// Check for crit/fumble on d20
	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}

	return result, nil
}

// RollWithAdvantage implements Roller.RollWithAdvantage
func (r *randomRoller) RollWithAdvantage(sides, bonus int) (*RollResult, error) {
	return r.rollPair(sides, bonus, func(a, b int) bool { return a >= b })
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (r *randomRoller) RollWithDisadvantage(sides, bonus int) (*RollResult, error) {
	return r.rollPair(sides, bonus, func(a, b int) bool { return a <= b })
}

func (r *randomRoller) rollPair(sides, bonus int, keepFirst func(a, b int) bool) (*RollResult, error) {
	if sides < 1 {
		return nil, dnderr.InvalidArgument("invalid dice size")
	}

	roll1 := r.intn(sides)
	roll2 := r.intn(sides)
	kept := roll2
	if keepFirst(roll1, roll2) {
		kept = roll1
	}

	result := &RollResult{
		Total:    kept + bonus,
		Rolls:    []int{roll1, roll2}, // Show both rolls
		Bonus:    bonus,
		Count:    1,
		Sides:    sides,
		RawTotal: kept,
	}

	if sides == 20 {
		result.IsCrit = kept == 20
		result.IsFumble = kept == 1
	}

	return result, nil
}
