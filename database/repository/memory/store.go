// Package memoryRepo is an in-process implementation of repository.Store.
// A transaction works on a private copy of the whole state and swaps it in
// on success, so a failed transaction leaves nothing behind. Transactions
// are serialized by a single mutex.
package memoryRepo

import (
	"context"
	"sync"

	"slotbook/database/repository"
	"slotbook/models"
)

type state struct {
	seq       int64
	providers map[int64]models.Provider
	services  map[int64]models.Service
	slots     map[int64]models.TimeSlot
	bookings  map[int64]models.Booking
}

func newState() *state {
	return &state{
		providers: map[int64]models.Provider{},
		services:  map[int64]models.Service{},
		slots:     map[int64]models.TimeSlot{},
		bookings:  map[int64]models.Booking{},
	}
}

func (s *state) clone() *state {
	c := &state{
		seq:       s.seq,
		providers: make(map[int64]models.Provider, len(s.providers)),
		services:  make(map[int64]models.Service, len(s.services)),
		slots:     make(map[int64]models.TimeSlot, len(s.slots)),
		bookings:  make(map[int64]models.Booking, len(s.bookings)),
	}
	for k, v := range s.providers {
		c.providers[k] = v
	}
	for k, v := range s.services {
		c.services[k] = v
	}
	for k, v := range s.slots {
		c.slots[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	return c
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Store is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	st *state
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, work); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) read() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}
