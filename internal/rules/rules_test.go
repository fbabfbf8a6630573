package rules

import (
	"testing"

	"github.com/jason-s-yu/skat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(s string) models.Card { return models.MustParseCard(s) }

func trick(cards ...string) Trick {
	t := make(Trick, len(cards))
	for i, c := range cards {
		t[i] = Play{PlayerID: i + 1, Card: card(c)}
	}
	return t
}

func mustRules(t *testing.T, token string) *Rules {
	t.Helper()
	r, err := New(1, token)
	require.NoError(t, err)
	return r
}

func TestParseGameType(t *testing.T) {
	cases := map[string]GameType{
		"grand":      {Kind: KindGrand},
		" NULL ":     {Kind: KindNull},
		"clubs":      {Kind: KindSuit, Trump: models.Clubs},
		"Spades":     {Kind: KindSuit, Trump: models.Spades},
		"hearts":     {Kind: KindSuit, Trump: models.Hearts},
		"diamonds\n": {Kind: KindSuit, Trump: models.Diamonds},
	}
	for token, want := range cases {
		got, err := ParseGameType(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)

		again, err := ParseGameType(got.Token())
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}

	for _, bad := range []string{"", "ramsch", "c", "clubs grand"} {
		_, err := New(2, bad)
		assert.ErrorIs(t, err, ErrInvalidDeclaration, bad)
	}
}

func TestNullHasNoTrump(t *testing.T) {
	r := mustRules(t, "null")
	for _, c := range models.NewDeck() {
		assert.False(t, r.IsTrump(c), "%s", c)
	}
}

func TestGrandTrumpsAreJacksOnly(t *testing.T) {
	r := mustRules(t, "grand")
	for _, c := range models.NewDeck() {
		assert.Equal(t, c.Rank == models.Jack, r.IsTrump(c), "%s", c)
	}
}

func TestSuitGameTrumps(t *testing.T) {
	r := mustRules(t, "hearts")
	for _, c := range models.NewDeck() {
		assert.Equal(t, c.Rank == models.Jack || c.Suit == models.Hearts, r.IsTrump(c), "%s", c)
	}

	// jacks outrank every card of the trump suit, in fixed suit precedence
	order := []string{"JC", "JS", "JH", "JD", "AH", "TH", "KH", "QH", "9H", "8H", "7H"}
	for i := 1; i < len(order); i++ {
		_, hi := r.RankAndTrump(card(order[i-1]))
		_, lo := r.RankAndTrump(card(order[i]))
		assert.Greater(t, hi, lo, "%s over %s", order[i-1], order[i])
	}
}

func TestNullOrder(t *testing.T) {
	r := mustRules(t, "null")
	order := []string{"AS", "KS", "QS", "JS", "TS", "9S", "8S", "7S"}
	for i := 1; i < len(order); i++ {
		_, hi := r.RankAndTrump(card(order[i-1]))
		_, lo := r.RankAndTrump(card(order[i]))
		assert.Greater(t, hi, lo, "%s over %s", order[i-1], order[i])
	}
}

func TestWinner(t *testing.T) {
	cases := []struct {
		name  string
		game  string
		trick Trick
		want  int
	}{
		{"trump beats led ace", "clubs", trick("AS", "7C", "TS"), 2},
		{"highest trump wins", "clubs", trick("7C", "JD", "AC"), 2},
		{"club jack tops all", "spades", trick("JS", "JC", "AS"), 2},
		{"only led suit wins", "grand", trick("7H", "AS", "AD"), 1},
		{"ten beats king in suit play", "grand", trick("KH", "TH", "9H"), 2},
		{"jack is trump in grand", "grand", trick("AH", "TH", "JD"), 3},
		{"plain jack follows suit in null", "null", trick("TH", "JH", "AC"), 2},
		{"king beats ten in null", "null", trick("KD", "TD", "AS"), 1},
		{"trump lead holds against plain", "diamonds", trick("8D", "AH", "AS"), 1},
		{"third card wins led suit", "hearts", trick("7S", "8S", "AS"), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := mustRules(t, tc.game)
			got, err := r.Winner(tc.trick)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWinnerDeterministicAcrossRotations(t *testing.T) {
	r := mustRules(t, "spades")
	tr := Trick{
		{PlayerID: 3, Card: card("AH")},
		{PlayerID: 1, Card: card("7S")},
		{PlayerID: 2, Card: card("TH")},
	}
	for i := 0; i < 5; i++ {
		got, err := r.Winner(tr)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	}
}

func TestWinnerRejectsIncompleteTrick(t *testing.T) {
	r := mustRules(t, "grand")
	_, err := r.Winner(trick("AS", "7S"))
	assert.ErrorIs(t, err, ErrIncompleteTrick)
}

func TestCountPointsWholeDeck(t *testing.T) {
	assert.Equal(t, 120, CountPoints(models.NewDeck()))
	assert.Equal(t, 0, CountPoints(nil))
	assert.Equal(t, 11+10+4+3+2, CountPoints(models.MustParseHand("AS TS KS QS JS 9S 8S 7S")))
}

func TestTrickString(t *testing.T) {
	assert.Equal(t, "[(1, 7D), (2, JD), (3, JS)]", trick("7D", "JD", "JS").String())
}
