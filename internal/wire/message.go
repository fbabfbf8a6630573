// internal/wire/message.go
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the envelope version written by this server. Decoding any other
// version fails.
const Version = 1

// ErrMalformed is returned for any message or payload that cannot be decoded.
var ErrMalformed = errors.New("malformed message")

// Kind separates human readable status lines from structured objects.
type Kind string

const (
	KindText   Kind = "text"
	KindObject Kind = "object"
)

// Tag identifies the payload carried by an object message.
type Tag string

const (
	TagHand                  Tag = "hand"                     // server -> client: dealt hand
	TagBetRequest            Tag = "bet_request"              // server -> client: answer with a text line
	TagSkat                  Tag = "skat"                     // server -> declarer
	TagHiddenCards           Tag = "hidden_cards"             // declarer -> server: two cards
	TagHiddenCardsRequestAck Tag = "hidden_cards_request_ack" // server -> declarer: post-skat hand
	TagGameType              Tag = "game_type"                // declarer -> server, then broadcast
	TagPlayRequest           Tag = "play_request"             // server -> on-turn client
	TagCard                  Tag = "card"                     // client -> server play, then broadcast
)

// Message is one frame on the wire: either a text line or a tagged object.
type Message struct {
	Version int             `json:"v"`
	Kind    Kind            `json:"kind"`
	Tag     Tag             `json:"tag,omitempty"`
	Text    string          `json:"text,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TextLine builds a status line message.
func TextLine(s string) Message {
	return Message{Version: Version, Kind: KindText, Text: s}
}

// Object builds a tagged object message from an already encoded payload.
func Object(tag Tag, payload json.RawMessage) Message {
	return Message{Version: Version, Kind: KindObject, Tag: tag, Payload: payload}
}

// IsText reports whether m is a text line.
func (m Message) IsText() bool { return m.Kind == KindText }

// Is reports whether m is an object with the given tag.
func (m Message) Is(tag Tag) bool { return m.Kind == KindObject && m.Tag == tag }

// Marshal encodes the envelope.
func Marshal(m Message) ([]byte, error) {
	if m.Version == 0 {
		m.Version = Version
	}
	return json.Marshal(m)
}

// Unmarshal decodes and validates an envelope.
func Unmarshal(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m.Version != Version {
		return Message{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, m.Version)
	}
	switch m.Kind {
	case KindText:
	case KindObject:
		if m.Tag == "" {
			return Message{}, fmt.Errorf("%w: object without tag", ErrMalformed)
		}
	default:
		return Message{}, fmt.Errorf("%w: unknown kind %q", ErrMalformed, m.Kind)
	}
	return m, nil
}

// Expect checks that m is an object carrying tag.
func Expect(m Message, tag Tag) error {
	if !m.Is(tag) {
		got := string(m.Tag)
		if m.IsText() {
			got = "text line"
		}
		return fmt.Errorf("%w: expected %s, got %s", ErrMalformed, tag, got)
	}
	return nil
}
