package sampling

import (
	"context"
	"errors"
	"fmt"

	"github.com/mbolis/agriquest/model"
)

var ErrNotOnBoard = errors.New("item is not in the source list")

// Board tracks items moving between an available and an assigned list, for
// instance participants allocated to a quota. Moves are applied only after
// the remote call reports success.
type Board[T any] struct {
	Available []T `json:"available"`
	Assigned  []T `json:"assigned"`

	id func(T) int
}

func NewBoard[T any](available, assigned []T, id func(T) int) *Board[T] {
	if available == nil {
		available = []T{}
	}
	if assigned == nil {
		assigned = []T{}
	}
	return &Board[T]{Available: available, Assigned: assigned, id: id}
}

func NewParticipantBoard(eligible, allocated []model.Participant) *Board[model.Participant] {
	return NewBoard(eligible, allocated, func(p model.Participant) int { return p.ID })
}

func NewFarmBoard(candidates, assigned []model.Farm) *Board[model.Farm] {
	return NewBoard(candidates, assigned, func(f model.Farm) int { return f.ID })
}

// Allocate moves the item from Available to Assigned once remote succeeds.
// On failure both lists are left as they were.
func (b *Board[T]) Allocate(ctx context.Context, id int, remote func(context.Context) error) error {
	return b.move(ctx, id, &b.Available, &b.Assigned, remote)
}

// Deallocate is the reverse of Allocate.
func (b *Board[T]) Deallocate(ctx context.Context, id int, remote func(context.Context) error) error {
	return b.move(ctx, id, &b.Assigned, &b.Available, remote)
}

// AllocateAll moves several items with a single remote call. Every id must be
// available; otherwise nothing is sent and nothing moves.
func (b *Board[T]) AllocateAll(ctx context.Context, ids []int, remote func(context.Context) error) error {
	for _, id := range ids {
		if b.indexIn(b.Available, id) < 0 {
			return fmt.Errorf("%w: %d", ErrNotOnBoard, id)
		}
	}
	if err := remote(ctx); err != nil {
		return err
	}
	for _, id := range ids {
		if i := b.indexIn(b.Available, id); i >= 0 {
			b.Assigned = b.appendOnce(b.Assigned, b.Available[i])
			b.Available = append(b.Available[:i:i], b.Available[i+1:]...)
		}
	}
	return nil
}

func (b *Board[T]) move(ctx context.Context, id int, from, to *[]T, remote func(context.Context) error) error {
	i := b.indexIn(*from, id)
	if i < 0 {
		return ErrNotOnBoard
	}
	if err := remote(ctx); err != nil {
		return err
	}

	item := (*from)[i]
	next := make([]T, 0, len(*from)-1)
	next = append(next, (*from)[:i]...)
	next = append(next, (*from)[i+1:]...)
	*from = next

	*to = b.appendOnce(*to, item)
	return nil
}

func (b *Board[T]) appendOnce(list []T, item T) []T {
	if b.indexIn(list, b.id(item)) >= 0 {
		return list
	}
	return append(list, item)
}

func (b *Board[T]) indexIn(list []T, id int) int {
	for i, item := range list {
		if b.id(item) == id {
			return i
		}
	}
	return -1
}

// Has reports whether id is among the assigned items.
func (b *Board[T]) Has(id int) bool {
	return b.indexIn(b.Assigned, id) >= 0
}
