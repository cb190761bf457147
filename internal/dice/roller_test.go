package dice_test

import (
	"testing"

	"github.com/KirkDiggler/dnd-combat-core/internal/dice"
	"github.com/KirkDiggler/dnd-combat-core/internal/dice/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockRoller_Roll(t *testing.T) {
	tests := []struct {
		name       string
		setupRolls []int
		count      int
		sides      int
		bonus      int
		wantTotal  int
		wantRolls  []int
		wantErr    bool
	}{
		{
			name:       "single d20 roll",
			setupRolls: []int{15},
			count:      1,
			sides:      20,
			bonus:      0,
			wantTotal:  15,
			wantRolls:  []int{15},
		},
		{
			name:       "2d6+3",
			setupRolls: []int{4, 5},
			count:      2,
			sides:      6,
			bonus:      3,
			wantTotal:  12, // 4+5+3
			wantRolls:  []int{4, 5},
		},
		{
			name:       "critical hit d20",
			setupRolls: []int{20},
			count:      1,
			sides:      20,
			bonus:      5,
			wantTotal:  25,
			wantRolls:  []int{20},
		},
		{
			name:       "not enough rolls",
			setupRolls: []int{10},
			count:      2,
			sides:      6,
			bonus:      0,
			wantErr:    true,
		},
		{
			name:       "invalid roll for die size",
			setupRolls: []int{7},
			count:      1,
			sides:      6,
			bonus:      0,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := mockdice.NewManualMockRoller()
			roller.SetRolls(tt.setupRolls)

			result, err := roller.Roll(tt.count, tt.sides, tt.bonus)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, result.Total)
			assert.Equal(t, tt.wantRolls, result.Rolls)
		})
	}
}

func TestMockRoller_AdvantagePairs(t *testing.T) {
	tests := []struct {
		name      string
		rolls     []int
		advantage bool
		bonus     int
		wantTotal int
		wantCrit  bool
	}{
		{name: "advantage takes higher", rolls: []int{10, 15}, advantage: true, bonus: 3, wantTotal: 18},
		{name: "advantage keeps natural 20", rolls: []int{20, 4}, advantage: true, wantTotal: 20, wantCrit: true},
		{name: "disadvantage takes lower", rolls: []int{10, 15}, bonus: 3, wantTotal: 13},
		{name: "disadvantage with same rolls", rolls: []int{12, 12}, wantTotal: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := mockdice.NewManualMockRoller()
			roller.SetRolls(tt.rolls)

			var (
				result *dice.RollResult
				err    error
			)
			if tt.advantage {
				result, err = roller.RollWithAdvantage(20, tt.bonus)
			} else {
				result, err = roller.RollWithDisadvantage(20, tt.bonus)
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, result.Total)
			assert.Equal(t, tt.rolls, result.Rolls)
			assert.Equal(t, tt.wantCrit, result.IsCrit)
		})
	}
}

func TestSeededRoller_Deterministic(t *testing.T) {
	a := dice.NewSeededRoller(42)
	b := dice.NewSeededRoller(42)

	for i := 0; i < 10; i++ {
		ra, err := a.Roll(1, 20, 0)
		require.NoError(t, err)
		rb, err := b.Roll(1, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, ra.Rolls, rb.Rolls)
	}
}

func TestParseNotation(t *testing.T) {
	tests := []struct {
		input   string
		want    dice.Notation
		wantErr bool
	}{
		{input: "1d20", want: dice.Notation{Count: 1, Sides: 20}},
		{input: "2d6+3", want: dice.Notation{Count: 2, Sides: 6, Bonus: 3}},
		{input: "d8-1", want: dice.Notation{Count: 1, Sides: 8, Bonus: -1}},
		{input: " 1D4 + 2 ", want: dice.Notation{Count: 1, Sides: 4, Bonus: 2}},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "0d6", wantErr: true},
		{input: "1d6+x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := dice.ParseNotation(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRollNotation(t *testing.T) {
	roller := mockdice.NewManualMockRoller()
	roller.SetRolls([]int{3, 5})

	result, err := dice.RollNotation(roller, "2d6+3")
	require.NoError(t, err)
	assert.Equal(t, 11, result.Total)
	assert.Equal(t, 8, result.RawTotal)
	assert.Equal(t, 0, roller.Remaining())
	assert.Equal(t, "2d6+3", dice.Notation{Count: 2, Sides: 6, Bonus: 3}.String())
}

func TestRandomRoller_BasicFunctionality(t *testing.T) {
	// Just verify the random roller doesn't crash
	// We can't test specific values since they're random
	roller := dice.NewRandomRoller()

	// Test basic roll
	result, err := roller.Roll(2, 6, 3)
	require.NoError(t, err)
	assert.Len(t, result.Rolls, 2)
	assert.GreaterOrEqual(t, result.Total, 5) // minimum: 1+1+3
	assert.LessOrEqual(t, result.Total, 15)   // maximum: 6+6+3

	// Test advantage
	advResult, err := roller.RollWithAdvantage(20, 2)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, advResult.Total, 3) // minimum: 1+2
	assert.LessOrEqual(t, advResult.Total, 22)   // maximum: 20+2
	assert.Len(t, advResult.Rolls, 2, "advantage should roll twice")
	for _, roll := range advResult.Rolls {
		assert.GreaterOrEqual(t, roll, 1)
		assert.LessOrEqual(t, roll, 20)
	}

	// Test disadvantage
	disResult, err := roller.RollWithDisadvantage(20, 2)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, disResult.Total, 3) // minimum: 1+2
	assert.LessOrEqual(t, disResult.Total, 22)   // maximum: 20+2
	assert.Len(t, disResult.Rolls, 2, "disadvantage should roll twice")
	for _, roll := range disResult.Rolls {
		assert.GreaterOrEqual(t, roll, 1)
		assert.LessOrEqual(t, roll, 20)
	}
}
