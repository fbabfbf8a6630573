// Package gamelog records the course of a game: the dealt hands, the
// declaration and every trick, in playing order.
package gamelog

import (
	"context"
	"errors"

	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/rules"
)

// Recorder receives game records in order. A game calls RecordHand once per
// seat, RecordDeclaration at most once, RecordTrick once per completed trick,
// and Close on every exit path.
type Recorder interface {
	RecordHand(ctx context.Context, seat *models.Seat) error
	RecordDeclaration(ctx context.Context, r *rules.Rules, hand models.Hand) error
	RecordTrick(ctx context.Context, trick rules.Trick) error
	Close() error
}

// Multi fans every record out to all recorders. It keeps going after a failure
// and returns the joined errors.
type Multi []Recorder

func (m Multi) RecordHand(ctx context.Context, seat *models.Seat) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordHand(ctx, seat))
	}
	return errors.Join(errs...)
}

func (m Multi) RecordDeclaration(ctx context.Context, r *rules.Rules, hand models.Hand) error {
	var errs []error
	for _, rec := range m {
		errs = append(errs, rec.RecordDeclaration(ctx, r, hand))
	}
	return errors.Join(errs...)
}

func (m Multi) RecordTrick(ctx context.Context, trick rules.Trick) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordTrick(ctx, trick))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}

// Discard drops every record.
type Discard struct{}

func (Discard) RecordHand(context.Context, *models.Seat) error                     { return nil }
func (Discard) RecordDeclaration(context.Context, *rules.Rules, models.Hand) error { return nil }
func (Discard) RecordTrick(context.Context, rules.Trick) error                     { return nil }
func (Discard) Close() error                                                       { return nil }
