// Package client is the terminal side of the table: it prints what the server
// announces and answers prompts from a line-oriented input.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/player"
	"github.com/jason-s-yu/skat/internal/rules"
	"github.com/jason-s-yu/skat/internal/transport"
	"github.com/jason-s-yu/skat/internal/wire"
)

// ErrInputClosed is returned when the input ends while the server waits for an
// answer.
var ErrInputClosed = errors.New("input closed")

// Session plays one game over conn.
type Session struct {
	conn transport.Conn
	in   *bufio.Scanner
	out  io.Writer
	hand models.Hand
}

// NewSession reads answers from in and writes everything shown to the player to
// out.
func NewSession(conn transport.Conn, in io.Reader, out io.Writer) *Session {
	return &Session{conn: conn, in: bufio.NewScanner(in), out: out}
}

// Run handles server messages until the server ends the game.
func (s *Session) Run(ctx context.Context) error {
	for {
		m, err := s.conn.Receive(ctx)
		if errors.Is(err, transport.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.handle(ctx, m); err != nil {
			return err
		}
	}
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// ask prompts until valid accepts a line.
func (s *Session) ask(prompt string, valid func(string) error) (string, error) {
	for {
		s.printf("%s", prompt)
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return "", err
			}
			return "", ErrInputClosed
		}
		line := strings.TrimSpace(s.in.Text())
		if valid == nil {
			return line, nil
		}
		if err := valid(line); err != nil {
			s.printf("%v\n", err)
			continue
		}
		return line, nil
	}
}

func (s *Session) handle(ctx context.Context, m wire.Message) error {
	if m.IsText() {
		s.printf("%s\n", m.Text)
		return nil
	}

	switch m.Tag {
	case wire.TagHand:
		h, err := wire.DecodeHand(m.Payload)
		if err != nil {
			return err
		}
		s.hand = h
		s.printf("Your hand: %s\n", h)
		return nil

	case wire.TagBetRequest:
		prompt, err := wire.DecodeBetRequest(m.Payload)
		if err != nil {
			return err
		}
		answer, err := s.ask(prompt+" ", nil)
		if err != nil {
			return err
		}
		return s.conn.Send(ctx, wire.TextLine(answer))

	case wire.TagSkat:
		return s.hide(ctx, m)

	case wire.TagHiddenCardsRequestAck:
		return s.declare(ctx, m)

	case wire.TagPlayRequest:
		return s.play(ctx, m)

	case wire.TagGameType:
		g, err := wire.DecodeGameType(m.Payload)
		if err != nil {
			return err
		}
		s.printf("Game: %s\n", g)
		return nil

	case wire.TagCard:
		c, err := wire.DecodeCard(m.Payload)
		if err != nil {
			return err
		}
		s.printf("  %s\n", c)
		return nil
	}
	s.printf("(ignoring %s message)\n", m.Tag)
	return nil
}

func (s *Session) hide(ctx context.Context, m wire.Message) error {
	skat, err := wire.DecodeHand(m.Payload)
	if err != nil {
		return err
	}
	s.printf("Skat: %s\n", skat)

	var hidden models.Hand
	_, err = s.ask("Cards to put away (e.g. 7S 8S): ", func(line string) error {
		h, err := models.ParseHand(line)
		if err != nil {
			return err
		}
		if len(h) != 2 {
			return fmt.Errorf("put away exactly two cards")
		}
		if _, err := player.PostSkatHand(s.hand, skat, [2]models.Card{h[0], h[1]}); err != nil {
			return err
		}
		hidden = h
		return nil
	})
	if err != nil {
		return err
	}
	msg, err := wire.HandMessage(wire.TagHiddenCards, hidden)
	if err != nil {
		return err
	}
	return s.conn.Send(ctx, msg)
}

func (s *Session) declare(ctx context.Context, m wire.Message) error {
	h, err := wire.DecodeHand(m.Payload)
	if err != nil {
		return err
	}
	s.hand = h
	s.printf("Your hand: %s\n", h)

	var g rules.GameType
	prompt := "Game (" + strings.Join(player.GameTypeTokens, ", ") + "): "
	_, err = s.ask(prompt, func(line string) error {
		parsed, perr := rules.ParseGameType(line)
		g = parsed
		return perr
	})
	if err != nil {
		return err
	}
	msg, err := wire.GameTypeMessage(g)
	if err != nil {
		return err
	}
	return s.conn.Send(ctx, msg)
}

func (s *Session) play(ctx context.Context, m wire.Message) error {
	req, err := wire.DecodePlayRequest(m.Payload)
	if err != nil {
		return err
	}
	s.hand = req.Hand
	if len(req.Trick) > 0 {
		s.printf("Trick so far: %s\n", req.Trick)
	}
	s.printf("Your hand: %s\n", req.Hand)

	var card models.Card
	_, err = s.ask("Your card: ", func(line string) error {
		c, err := models.ParseCard(line)
		if err != nil {
			return err
		}
		if !req.Hand.Contains(c) {
			return fmt.Errorf("you do not hold %s", c)
		}
		card = c
		return nil
	})
	if err != nil {
		return err
	}
	msg, err := wire.CardMessage(card)
	if err != nil {
		return err
	}
	return s.conn.Send(ctx, msg)
}
