package service

import (
    "fmt"
    "strings"
    "sync"
    "time"

    "github.com/iliyamo/excursion-storefront/internal/booking"
    "github.com/iliyamo/excursion-storefront/internal/model"
    "github.com/iliyamo/excursion-storefront/internal/queue"
    "github.com/iliyamo/excursion-storefront/internal/session"
)

// Backend is the part of the gateway client the flows need.
type Backend interface {
    booking.SlotFetcher
    booking.Booker
}

// Flows keeps one booking.Controller per (session, excursion) pair, so a
// visitor can move between excursion pages without losing a half-made
// selection on each.
type Flows struct {
    backend Backend
    pub     EventPublisher
    loc     *time.Location

    mu    sync.Mutex
    flows map[string]*flowEntry
}

type flowEntry struct {
    ctl      *booking.Controller
    lastUsed time.Time
}

func NewFlows(backend Backend, pub EventPublisher, loc *time.Location) *Flows {
    return &Flows{backend: backend, pub: pub, loc: loc, flows: map[string]*flowEntry{}}
}

// Get returns the flow of sess on excursion id, creating it on first use.
// A new flow publishes a booking.created event for each confirmed booking.
func (f *Flows) Get(sess *session.Store, excursionID int64) *booking.Controller {
    key := fmt.Sprintf("%s:%d", sess.ID(), excursionID)

    f.mu.Lock()
    defer f.mu.Unlock()
    if e, ok := f.flows[key]; ok {
        e.lastUsed = time.Now()
        return e.ctl
    }
    ctl := booking.New(excursionID, f.backend, f.backend, sess, booking.WithLocation(f.loc))
    ctl.OnBooked(func(b model.Booking) {
        publishAsync(f.pub, queue.NewBookingEvent(queue.BookingCreated, b, sess.User(), sess.ID()))
    })
    f.flows[key] = &flowEntry{ctl: ctl, lastUsed: time.Now()}
    return ctl
}

// Forget drops every flow of session sid, e.g. on logout.
func (f *Flows) Forget(sid string) {
    prefix := sid + ":"
    f.mu.Lock()
    defer f.mu.Unlock()
    for k := range f.flows {
        if strings.HasPrefix(k, prefix) {
            delete(f.flows, k)
        }
    }
}

// Sweep drops flows unused for longer than maxIdle and returns how many.
func (f *Flows) Sweep(maxIdle time.Duration) int {
    cutoff := time.Now().Add(-maxIdle)
    f.mu.Lock()
    defer f.mu.Unlock()
    n := 0
    for k, e := range f.flows {
        if e.lastUsed.Before(cutoff) {
            delete(f.flows, k)
            n++
        }
    }
    return n
}
