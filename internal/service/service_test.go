package service

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/iliyamo/excursion-storefront/internal/bookings"
    "github.com/iliyamo/excursion-storefront/internal/model"
    "github.com/iliyamo/excursion-storefront/internal/queue"
    "github.com/iliyamo/excursion-storefront/internal/session"
)

type chanPublisher chan queue.BookingEvent

func (p chanPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
    p <- ev
    return nil
}

type fakeBackend struct {
    bookings  []model.Booking
    cancelled []int64
}

func (f *fakeBackend) AvailableSlots(ctx context.Context, id int64, people int) ([]model.TimeSlot, error) {
    return []model.TimeSlot{{Date: "2025-06-01", Time: "10:00", Available: true}}, nil
}

func (f *fakeBackend) CreateBooking(ctx context.Context, token string, req model.BookingRequest) (*model.BookingConfirmation, error) {
    return &model.BookingConfirmation{Booking: model.Booking{ID: 11, ExcursionID: req.ExcursionID, Date: req.Date, NumberOfPeople: req.NumberOfPeople, Status: model.BookingConfirmed}}, nil
}

func (f *fakeBackend) MyBookings(ctx context.Context, token string) ([]model.Booking, error) {
    return append([]model.Booking(nil), f.bookings...), nil
}

func (f *fakeBackend) CancelBooking(ctx context.Context, token string, id int64) (*model.Booking, error) {
    f.cancelled = append(f.cancelled, id)
    return &model.Booking{ID: id, Status: model.BookingCancelled}, nil
}

type userResolver struct{}

func (userResolver) CurrentUser(ctx context.Context, token string) (*model.User, error) {
    return &model.User{ID: 3, Email: "a@example.com"}, nil
}

func signedIn(t *testing.T, sid string) *session.Store {
    t.Helper()
    s := session.New(sid, session.NewMemoryTokenStore(), userResolver{})
    if _, err := s.Login(context.Background(), "tok"); err != nil {
        t.Fatalf("login: %v", err)
    }
    return s
}

func waitEvent(t *testing.T, ch chanPublisher) queue.BookingEvent {
    t.Helper()
    select {
    case ev := <-ch:
        return ev
    case <-time.After(2 * time.Second):
        t.Fatalf("no event published")
    }
    return queue.BookingEvent{}
}

func TestFlows_PerSessionAndExcursion(t *testing.T) {
    f := NewFlows(&fakeBackend{}, nil, time.UTC)
    a, b := signedIn(t, "a"), signedIn(t, "b")

    if f.Get(a, 1) != f.Get(a, 1) {
        t.Fatalf("expected the same flow for the same session and excursion")
    }
    if f.Get(a, 1) == f.Get(a, 2) || f.Get(a, 1) == f.Get(b, 1) {
        t.Fatalf("flows must not be shared across excursions or sessions")
    }
    first := f.Get(a, 1)
    f.Forget("a")
    if f.Get(a, 1) == first {
        t.Fatalf("expected a fresh flow after Forget")
    }
}

func TestFlows_PublishesBookingCreated(t *testing.T) {
    pub := make(chanPublisher, 1)
    f := NewFlows(&fakeBackend{}, pub, time.UTC)
    sess := signedIn(t, "a")

    ctl := f.Get(sess, 42)
    _ = ctl.SetPeople(2)
    if err := ctl.RefreshAvailability(context.Background()); err != nil {
        t.Fatalf("refresh: %v", err)
    }
    _ = ctl.SelectDate("2025-06-01")
    _ = ctl.SelectTime("10:00")
    if _, err := ctl.Submit(context.Background()); err != nil {
        t.Fatalf("submit: %v", err)
    }

    ev := waitEvent(t, pub)
    if ev.Type != queue.BookingCreated || ev.BookingID != 11 || ev.UserID != 3 || ev.SessionID != "a" {
        t.Fatalf("unexpected event %+v", ev)
    }
}

func TestBookings_CancelPublishes(t *testing.T) {
    pub := make(chanPublisher, 1)
    backend := &fakeBackend{bookings: []model.Booking{{ID: 5, ExcursionTitle: "Рим", Status: model.BookingConfirmed}}}
    svc := NewBookings(backend, pub)
    sess := signedIn(t, "a")

    updated, err := svc.Cancel(context.Background(), sess, 5, bookings.Confirmed)
    if err != nil {
        t.Fatalf("cancel: %v", err)
    }
    if updated.Status != model.BookingCancelled {
        t.Fatalf("expected cancelled, got %s", updated.Status)
    }
    ev := waitEvent(t, pub)
    if ev.Type != queue.BookingCancelled || ev.BookingID != 5 || ev.ExcursionTitle != "Рим" {
        t.Fatalf("unexpected event %+v", ev)
    }
}

func TestBookings_CancelReloadsForUnknownID(t *testing.T) {
    backend := &fakeBackend{bookings: []model.Booking{{ID: 1, Status: model.BookingConfirmed}}}
    svc := NewBookings(backend, nil)
    sess := signedIn(t, "a")
    if _, err := svc.Load(context.Background(), sess); err != nil {
        t.Fatalf("load: %v", err)
    }

    // Booked after the list was loaded.
    backend.bookings = append(backend.bookings, model.Booking{ID: 2, Status: model.BookingPending})

    updated, err := svc.Cancel(context.Background(), sess, 2, bookings.Confirmed)
    if err != nil {
        t.Fatalf("expected cancel to succeed, got %v", err)
    }
    if updated.ID != 2 || len(backend.cancelled) != 1 || backend.cancelled[0] != 2 {
        t.Fatalf("expected backend cancel of 2, got %+v / %v", updated, backend.cancelled)
    }
    items := svc.List(sess).Items()
    if len(items) != 2 || items[1].Status != model.BookingCancelled {
        t.Fatalf("expected reloaded list with 2 cancelled, got %+v", items)
    }
}

func TestBookings_CancelUnknownAfterReload(t *testing.T) {
    backend := &fakeBackend{bookings: []model.Booking{{ID: 1, Status: model.BookingConfirmed}}}
    svc := NewBookings(backend, nil)
    sess := signedIn(t, "a")

    if _, err := svc.Cancel(context.Background(), sess, 9, bookings.Confirmed); !errors.Is(err, bookings.ErrUnknownBooking) {
        t.Fatalf("expected ErrUnknownBooking, got %v", err)
    }
    if len(backend.cancelled) != 0 {
        t.Fatalf("expected no backend cancel, got %v", backend.cancelled)
    }
}

func TestBookings_SweepDropsIdleLists(t *testing.T) {
    svc := NewBookings(&fakeBackend{}, nil)
    for _, sid := range []string{"a", "b", "c"} {
        if _, err := svc.Load(context.Background(), signedIn(t, sid)); err != nil {
            t.Fatalf("load %s: %v", sid, err)
        }
    }
    if n := svc.Sweep(time.Hour); n != 0 {
        t.Fatalf("expected nothing swept, got %d", n)
    }
    time.Sleep(5 * time.Millisecond)
    if n := svc.Sweep(time.Millisecond); n != 3 {
        t.Fatalf("expected 3 lists swept, got %d", n)
    }
}

func TestFlows_SweepDropsIdleFlows(t *testing.T) {
    f := NewFlows(&fakeBackend{}, nil, time.UTC)
    sess := signedIn(t, "a")
    first := f.Get(sess, 1)
    f.Get(sess, 2)

    if n := f.Sweep(time.Hour); n != 0 {
        t.Fatalf("expected nothing swept, got %d", n)
    }
    time.Sleep(5 * time.Millisecond)
    if n := f.Sweep(time.Millisecond); n != 2 {
        t.Fatalf("expected 2 flows swept, got %d", n)
    }
    if f.Get(sess, 1) == first {
        t.Fatalf("expected a fresh flow after sweep")
    }
}
