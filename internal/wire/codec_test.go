package wire

import (
	"encoding/json"
	"testing"

	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardRoundTrip(t *testing.T) {
	for _, c := range models.NewDeck() {
		msg, err := CardMessage(c)
		require.NoError(t, err)

		data, err := Marshal(msg)
		require.NoError(t, err)
		back, err := Unmarshal(data)
		require.NoError(t, err)
		require.True(t, back.Is(TagCard))

		got, err := DecodeCard(back.Payload)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestHandRoundTrip(t *testing.T) {
	hands := []models.Hand{
		{},
		models.MustParseHand("JC"),
		models.MustParseHand("AS 7D TH JC QH"),
		models.NewDeck(),
	}
	for _, h := range hands {
		raw, err := EncodeHand(h)
		require.NoError(t, err)
		got, err := DecodeHand(raw)
		require.NoError(t, err)
		assert.Equal(t, h, got)
	}
}

func TestGameTypeRoundTrip(t *testing.T) {
	for _, tok := range []string{"clubs", "spades", "hearts", "diamonds", "grand", "null"} {
		gt, err := rules.ParseGameType(tok)
		require.NoError(t, err)
		msg, err := GameTypeMessage(gt)
		require.NoError(t, err)

		got, err := DecodeGameType(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, gt, got)
	}
}

func TestPlayRequestRoundTrip(t *testing.T) {
	req := PlayRequest{
		Trick: rules.Trick{
			{PlayerID: 3, Card: models.MustParseCard("JS")},
			{PlayerID: 1, Card: models.MustParseCard("7D")},
		},
		Hand: models.MustParseHand("8D 9D AH"),
	}
	msg, err := PlayRequestMessage(req)
	require.NoError(t, err)
	got, err := DecodePlayRequest(msg.Payload)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeCard(json.RawMessage(`"ZZ"`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeCard(json.RawMessage(`{"suit":1}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeHand(json.RawMessage(`["JC", 4]`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeGameType(json.RawMessage(`{"type":"ramsch"}`))
	assert.ErrorIs(t, err, rules.ErrInvalidDeclaration)

	tok, err := DecodeGameTypeToken(json.RawMessage(`{"type":"ramsch"}`))
	require.NoError(t, err)
	assert.Equal(t, "ramsch", tok)
}

func TestUnmarshalEnvelope(t *testing.T) {
	_, err := Unmarshal([]byte(`{"v":2,"kind":"text","text":"hi"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Unmarshal([]byte(`{"v":1,"kind":"object"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Unmarshal([]byte(`{"v":1,"kind":"shout"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Unmarshal([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)

	m, err := Unmarshal([]byte(`{"v":1,"kind":"text","text":"y"}`))
	require.NoError(t, err)
	assert.True(t, m.IsText())
	assert.Equal(t, "y", m.Text)

	assert.ErrorIs(t, Expect(m, TagCard), ErrMalformed)
}

func TestMarshalFillsVersion(t *testing.T) {
	data, err := Marshal(Message{Kind: KindText, Text: "hello"})
	require.NoError(t, err)
	m, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, Version, m.Version)
}

func TestBetRequestPrompt(t *testing.T) {
	m := BetRequestMessage("play? (y/n)")
	require.True(t, m.Is(TagBetRequest))
	prompt, err := DecodeBetRequest(m.Payload)
	require.NoError(t, err)
	assert.Equal(t, "play? (y/n)", prompt)
}
