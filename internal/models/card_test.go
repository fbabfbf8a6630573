package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCardRoundTrip(t *testing.T) {
	for _, c := range NewDeck() {
		parsed, err := ParseCard(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestParseCardVariants(t *testing.T) {
	c, err := ParseCard(" 10h ")
	require.NoError(t, err)
	assert.Equal(t, Card{Suit: Hearts, Rank: Ten}, c)

	for _, bad := range []string{"", "X", "1C", "JX", "ZC", "JCC"} {
		_, err := ParseCard(bad)
		assert.ErrorIs(t, err, ErrInvalidCard, bad)
	}
}

func TestHandRemoveKeepsOrder(t *testing.T) {
	h := MustParseHand("7D JH AS TC")
	assert.True(t, h.Remove(MustParseCard("JH")))
	assert.Equal(t, MustParseHand("7D AS TC"), h)
	assert.False(t, h.Remove(MustParseCard("JH")))
	assert.Equal(t, "[7D, AS, TC]", h.String())
}

func TestHandSort(t *testing.T) {
	h := MustParseHand("AC 7C JD TH 8D")
	h.Sort()
	assert.Equal(t, MustParseHand("8D JD TH 7C AC"), h)
}
