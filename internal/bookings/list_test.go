package bookings

import (
    "context"
    "errors"
    "reflect"
    "testing"

    "github.com/iliyamo/excursion-storefront/internal/apiclient"
    "github.com/iliyamo/excursion-storefront/internal/model"
)

type fakeSource struct {
    items     []model.Booking
    cancelled []int64
    cancelErr error
    loadErr   error
}

func (f *fakeSource) MyBookings(ctx context.Context, token string) ([]model.Booking, error) {
    if f.loadErr != nil {
        return nil, f.loadErr
    }
    return append([]model.Booking(nil), f.items...), nil
}

func (f *fakeSource) CancelBooking(ctx context.Context, token string, id int64) (*model.Booking, error) {
    f.cancelled = append(f.cancelled, id)
    if f.cancelErr != nil {
        return nil, f.cancelErr
    }
    return &model.Booking{ID: id, Status: model.BookingCancelled}, nil
}

func loaded(t *testing.T, src *fakeSource) *List {
    t.Helper()
    l := NewList(src)
    if err := l.Load(context.Background(), "tok"); err != nil {
        t.Fatalf("load: %v", err)
    }
    return l
}

func TestCancel_ReplacesOnlyMatchingItem(t *testing.T) {
    src := &fakeSource{items: []model.Booking{
        {ID: 1, Status: model.BookingPending, ExcursionTitle: "Рим"},
        {ID: 2, Status: model.BookingConfirmed, ExcursionTitle: "Флоренция"},
    }}
    l := loaded(t, src)
    before := l.Items()[1]

    if _, err := l.Cancel(context.Background(), "tok", 1, Confirmed); err != nil {
        t.Fatalf("cancel: %v", err)
    }
    items := l.Items()
    if len(items) != 2 || items[0].ID != 1 || items[0].Status != model.BookingCancelled {
        t.Fatalf("expected booking 1 cancelled in place, got %+v", items)
    }
    if items[0].ExcursionTitle != "Рим" {
        t.Fatalf("expected excursion snapshot kept, got %q", items[0].ExcursionTitle)
    }
    if !reflect.DeepEqual(items[1], before) {
        t.Fatalf("booking 2 changed: %+v", items[1])
    }
}

func TestCancel_Declined(t *testing.T) {
    src := &fakeSource{items: []model.Booking{{ID: 1, Status: model.BookingConfirmed}}}
    l := loaded(t, src)

    var asked string
    _, err := l.Cancel(context.Background(), "tok", 1, ConfirmFunc(func(p string) bool {
        asked = p
        return false
    }))
    if !errors.Is(err, ErrDeclined) {
        t.Fatalf("expected ErrDeclined, got %v", err)
    }
    if asked != MsgConfirmCancel {
        t.Fatalf("expected prompt %q, got %q", MsgConfirmCancel, asked)
    }
    if len(src.cancelled) != 0 {
        t.Fatalf("expected no backend call")
    }
}

func TestCancel_TerminalAndUnknown(t *testing.T) {
    src := &fakeSource{items: []model.Booking{{ID: 1, Status: model.BookingCancelled}}}
    l := loaded(t, src)

    if _, err := l.Cancel(context.Background(), "tok", 1, Confirmed); !errors.Is(err, ErrAlreadyCancelled) {
        t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
    }
    if _, err := l.Cancel(context.Background(), "tok", 9, Confirmed); !errors.Is(err, ErrUnknownBooking) {
        t.Fatalf("expected ErrUnknownBooking, got %v", err)
    }
    if len(src.cancelled) != 0 {
        t.Fatalf("expected no backend call")
    }
}

func TestCancel_FailureKeepsItems(t *testing.T) {
    src := &fakeSource{
        items:     []model.Booking{{ID: 1, Status: model.BookingConfirmed}},
        cancelErr: &apiclient.RequestError{Kind: apiclient.KindForbidden, Status: 403, Message: apiclient.MsgAccessDenied},
    }
    l := loaded(t, src)

    if _, err := l.Cancel(context.Background(), "tok", 1, Confirmed); err == nil {
        t.Fatalf("expected error")
    }
    if l.Items()[0].Status != model.BookingConfirmed {
        t.Fatalf("failed cancel must not change the item")
    }
    if l.Error() != apiclient.MsgAccessDenied {
        t.Fatalf("expected %q, got %q", apiclient.MsgAccessDenied, l.Error())
    }
}

func TestLoad_FailureKeepsPrevious(t *testing.T) {
    src := &fakeSource{items: []model.Booking{{ID: 1, Status: model.BookingConfirmed}}}
    l := loaded(t, src)
    src.loadErr = errors.New("down")

    if err := l.Load(context.Background(), "tok"); err == nil {
        t.Fatalf("expected error")
    }
    if len(l.Items()) != 1 || l.Error() != msgLoadFailed {
        t.Fatalf("expected previous items and %q, got %d / %q", msgLoadFailed, len(l.Items()), l.Error())
    }
}

func TestPartitions(t *testing.T) {
    items := []model.Booking{
        {ID: 1, Status: model.BookingPending},
        {ID: 2, Status: model.BookingCancelled},
        {ID: 3, Status: model.BookingConfirmed},
    }
    active, cancelled := Active(items), Cancelled(items)
    if len(active) != 2 || active[0].ID != 1 || active[1].ID != 3 {
        t.Fatalf("unexpected active %+v", active)
    }
    if len(cancelled) != 1 || cancelled[0].ID != 2 {
        t.Fatalf("unexpected cancelled %+v", cancelled)
    }
    if got := Active(nil); got == nil || len(got) != 0 {
        t.Fatalf("expected empty non-nil slice")
    }
}
