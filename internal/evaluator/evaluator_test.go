package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyrillknecht/nolimittexasholdem/internal/deck"
)

func must(t *testing.T, tokens ...string) []deck.Card {
	t.Helper()
	cards := make([]deck.Card, len(tokens))
	for i, tok := range tokens {
		c, err := deck.Parse(tok)
		require.NoError(t, err)
		cards[i] = c
	}
	return cards
}

func TestEvaluateLiteralScenarios(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   Value
	}{
		{
			name:   "high card",
			tokens: []string{"A0", "B1", "C3", "D6", "A7", "B9", "CA"},
			want:   encode(HighCardOffset, 10, 9, 7, 6, 3),
		},
		{
			name:   "pair",
			tokens: []string{"A9", "B1", "C3", "D6", "A7", "B9", "CA"},
			want:   encode(PairOffset, 0, 9, 10, 7, 6),
		},
		{
			name:   "full house",
			tokens: []string{"A0", "B0", "C0", "D6", "A7", "B9", "C9"},
			want:   encode(FullHouseOffset, 0, 0, 0, 0, 9),
		},
		{
			name:   "four of a kind",
			tokens: []string{"A0", "B1", "C6", "D6", "A7", "A6", "B6"},
			want:   encode(FourOfAKindOffset, 0, 0, 0, 6, 7),
		},
		{
			name:   "straight flush",
			tokens: []string{"BB", "B1", "C6", "C7", "C8", "C9", "CA"},
			want:   encode(StraightFlushOffset, 0, 0, 0, 0, 10),
		},
		{
			name:   "wheel",
			tokens: []string{"AC", "C0", "A1", "D2", "A3", "CA", "B1"},
			want:   encode(StraightOffset, 0, 0, 0, 0, 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := must(t, tt.tokens...)
			require.Equal(t, tt.want, Evaluate(cards))
		})
	}
}

func TestEvaluatePermutationInvariant(t *testing.T) {
	cards := must(t, "AC", "B5", "C2", "D9", "A6", "B1", "C8")
	want := Evaluate(cards)

	perm := make([]deck.Card, len(cards))
	copy(perm, cards)
	// A handful of rotations stand in for the full 7! permutation space.
	for rot := 1; rot < len(perm); rot++ {
		rotated := append(append([]deck.Card{}, perm[rot:]...), perm[:rot]...)
		require.Equal(t, want, Evaluate(rotated), "rotation %d changed the result", rot)
	}
}

func TestEvaluateCategoryOrdering(t *testing.T) {
	highCardHand := must(t, "A0", "B1", "C3", "D6", "A7", "B9", "CA")
	pairHand := must(t, "A9", "B1", "C3", "D6", "A7", "B9", "CA")

	hc := Evaluate(highCardHand)
	p := Evaluate(pairHand)

	require.Less(t, hc, PairOffset)
	require.GreaterOrEqual(t, p, PairOffset)
	require.Less(t, hc, p)
}

func TestEvaluatePanicsOnWrongCardCount(t *testing.T) {
	require.Panics(t, func() {
		Evaluate(must(t, "A0", "B1"))
	})
}

func TestEvaluateRoyalFlush(t *testing.T) {
	cards := must(t, "DC", "DB", "DA", "D9", "D8", "A0", "B1")
	v := Evaluate(cards)
	require.Equal(t, "Straight Flush", v.Category())
}

func TestEvaluateFlushBeatsStraight(t *testing.T) {
	flushHand := must(t, "D0", "D2", "D4", "D6", "D8", "A1", "B3")
	straightHand := must(t, "A0", "B1", "C2", "D3", "A4", "B6", "C8")
	require.Greater(t, Evaluate(flushHand), Evaluate(straightHand))
}
