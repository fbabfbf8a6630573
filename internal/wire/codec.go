// internal/wire/codec.go
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/rules"
)

// Cards travel as their short token ("JC", "TH") so the format does not depend
// on the in-memory representation.

// EncodeCard encodes a single card payload.
func EncodeCard(c models.Card) (json.RawMessage, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidCard, c)
	}
	return json.Marshal(c.String())
}

// DecodeCard decodes a single card payload.
func DecodeCard(raw json.RawMessage) (models.Card, error) {
	var tok string
	if err := json.Unmarshal(raw, &tok); err != nil {
		return models.Card{}, fmt.Errorf("%w: card: %v", ErrMalformed, err)
	}
	c, err := models.ParseCard(tok)
	if err != nil {
		return models.Card{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return c, nil
}

func handTokens(h models.Hand) ([]string, error) {
	toks := make([]string, len(h))
	for i, c := range h {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidCard, c)
		}
		toks[i] = c.String()
	}
	return toks, nil
}

func parseTokens(toks []string) (models.Hand, error) {
	h := make(models.Hand, len(toks))
	for i, tok := range toks {
		c, err := models.ParseCard(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		h[i] = c
	}
	return h, nil
}

// EncodeHand encodes an ordered hand (also used for the skat and hidden cards).
func EncodeHand(h models.Hand) (json.RawMessage, error) {
	toks, err := handTokens(h)
	if err != nil {
		return nil, err
	}
	return json.Marshal(toks)
}

// DecodeHand decodes an ordered hand.
func DecodeHand(raw json.RawMessage) (models.Hand, error) {
	var toks []string
	if err := json.Unmarshal(raw, &toks); err != nil {
		return nil, fmt.Errorf("%w: hand: %v", ErrMalformed, err)
	}
	return parseTokens(toks)
}

// gameTypeDTO is the declared-type descriptor on the wire.
type gameTypeDTO struct {
	Type string `json:"type"`
}

// EncodeGameType encodes a declared game type descriptor.
func EncodeGameType(g rules.GameType) (json.RawMessage, error) {
	return json.Marshal(gameTypeDTO{Type: g.Token()})
}

// DecodeGameTypeToken extracts the raw declaration token without validating it,
// so that an unknown token surfaces as rules.ErrInvalidDeclaration rather than a
// framing error.
func DecodeGameTypeToken(raw json.RawMessage) (string, error) {
	var dto gameTypeDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return "", fmt.Errorf("%w: game type: %v", ErrMalformed, err)
	}
	return dto.Type, nil
}

// DecodeGameType decodes and validates a declared game type descriptor.
func DecodeGameType(raw json.RawMessage) (rules.GameType, error) {
	tok, err := DecodeGameTypeToken(raw)
	if err != nil {
		return rules.GameType{}, err
	}
	return rules.ParseGameType(tok)
}

type playDTO struct {
	Player int    `json:"player"`
	Card   string `json:"card"`
}

// PlayRequest is sent to the on-turn participant.
type PlayRequest struct {
	Trick rules.Trick
	Hand  models.Hand
}

type playRequestDTO struct {
	Trick []playDTO `json:"trick"`
	Hand  []string  `json:"hand"`
}

// EncodePlayRequest encodes the trick so far and the participant's current hand.
func EncodePlayRequest(req PlayRequest) (json.RawMessage, error) {
	hand, err := handTokens(req.Hand)
	if err != nil {
		return nil, err
	}
	dto := playRequestDTO{Trick: make([]playDTO, len(req.Trick)), Hand: hand}
	for i, p := range req.Trick {
		dto.Trick[i] = playDTO{Player: p.PlayerID, Card: p.Card.String()}
	}
	return json.Marshal(dto)
}

// DecodePlayRequest is used by clients.
func DecodePlayRequest(raw json.RawMessage) (PlayRequest, error) {
	var dto playRequestDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return PlayRequest{}, fmt.Errorf("%w: play request: %v", ErrMalformed, err)
	}
	hand, err := parseTokens(dto.Hand)
	if err != nil {
		return PlayRequest{}, err
	}
	req := PlayRequest{Trick: make(rules.Trick, len(dto.Trick)), Hand: hand}
	for i, p := range dto.Trick {
		c, err := models.ParseCard(p.Card)
		if err != nil {
			return PlayRequest{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		req.Trick[i] = rules.Play{PlayerID: p.Player, Card: c}
	}
	return req, nil
}

// CardMessage builds an Object(Card) message.
func CardMessage(c models.Card) (Message, error) {
	raw, err := EncodeCard(c)
	if err != nil {
		return Message{}, err
	}
	return Object(TagCard, raw), nil
}

// HandMessage builds an object message whose payload is a hand.
func HandMessage(tag Tag, h models.Hand) (Message, error) {
	raw, err := EncodeHand(h)
	if err != nil {
		return Message{}, err
	}
	return Object(tag, raw), nil
}

// GameTypeMessage builds an Object(GameType) message.
func GameTypeMessage(g rules.GameType) (Message, error) {
	raw, err := EncodeGameType(g)
	if err != nil {
		return Message{}, err
	}
	return Object(TagGameType, raw), nil
}

// PlayRequestMessage builds an Object(PlayRequest) message.
func PlayRequestMessage(req PlayRequest) (Message, error) {
	raw, err := EncodePlayRequest(req)
	if err != nil {
		return Message{}, err
	}
	return Object(TagPlayRequest, raw), nil
}

type betRequestDTO struct {
	Prompt string `json:"prompt"`
}

// BetRequestMessage builds the bet prompt.
func BetRequestMessage(prompt string) Message {
	raw, _ := json.Marshal(betRequestDTO{Prompt: prompt})
	return Object(TagBetRequest, raw)
}

// DecodeBetRequest returns the prompt of a bet request.
func DecodeBetRequest(raw json.RawMessage) (string, error) {
	var dto betRequestDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return "", fmt.Errorf("%w: bet request: %v", ErrMalformed, err)
	}
	return dto.Prompt, nil
}
