package service

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/iliyamo/excursion-storefront/internal/bookings"
    "github.com/iliyamo/excursion-storefront/internal/model"
    "github.com/iliyamo/excursion-storefront/internal/queue"
    "github.com/iliyamo/excursion-storefront/internal/session"
)

// Bookings keeps the bookings list of every session and publishes a
// booking.cancelled event after each confirmed cancellation.
type Bookings struct {
    src bookings.Source
    pub EventPublisher

    mu    sync.Mutex
    lists map[string]*listEntry
}

type listEntry struct {
    list     *bookings.List
    lastUsed time.Time
}

func NewBookings(src bookings.Source, pub EventPublisher) *Bookings {
    return &Bookings{src: src, pub: pub, lists: map[string]*listEntry{}}
}

// List returns the list of sess, creating an empty one on first use.
func (b *Bookings) List(sess *session.Store) *bookings.List {
    b.mu.Lock()
    defer b.mu.Unlock()
    e, ok := b.lists[sess.ID()]
    if !ok {
        e = &listEntry{list: bookings.NewList(b.src)}
        b.lists[sess.ID()] = e
    }
    e.lastUsed = time.Now()
    return e.list
}

// Load refreshes the list of sess from the backend.
func (b *Bookings) Load(ctx context.Context, sess *session.Store) (*bookings.List, error) {
    l := b.List(sess)
    return l, l.Load(ctx, sess.Token())
}

// Cancel cancels booking id of sess after c confirmed.  When id is not in
// the loaded list (never loaded, or booked since the last load) the list is
// reloaded once and the cancellation retried.
func (b *Bookings) Cancel(ctx context.Context, sess *session.Store, id int64, c bookings.Confirmer) (*model.Booking, error) {
    l := b.List(sess)
    updated, err := l.Cancel(ctx, sess.Token(), id, c)
    if errors.Is(err, bookings.ErrUnknownBooking) {
        if err := l.Load(ctx, sess.Token()); err != nil {
            return nil, err
        }
        updated, err = l.Cancel(ctx, sess.Token(), id, c)
    }
    if err != nil {
        return nil, err
    }
    for _, it := range l.Items() {
        if it.ID == id {
            publishAsync(b.pub, queue.NewBookingEvent(queue.BookingCancelled, it, sess.User(), sess.ID()))
            break
        }
    }
    return updated, nil
}

// Forget drops the list of session sid.
func (b *Bookings) Forget(sid string) {
    b.mu.Lock()
    delete(b.lists, sid)
    b.mu.Unlock()
}

// Sweep drops lists unused for longer than maxIdle and returns how many.
func (b *Bookings) Sweep(maxIdle time.Duration) int {
    cutoff := time.Now().Add(-maxIdle)
    b.mu.Lock()
    defer b.mu.Unlock()
    n := 0
    for sid, e := range b.lists {
        if e.lastUsed.Before(cutoff) {
            delete(b.lists, sid)
            n++
        }
    }
    return n
}
