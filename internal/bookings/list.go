// Package bookings keeps a visitor's list of bookings in step with the
// backend, including the effect of cancelling one of them.
package bookings

import (
    "context"
    "errors"
    "sync"

    "github.com/iliyamo/excursion-storefront/internal/apiclient"
    "github.com/iliyamo/excursion-storefront/internal/model"
)

// MsgConfirmCancel is the question put to the visitor before cancelling.
const MsgConfirmCancel = "Вы уверены, что хотите отменить это бронирование?"

const (
    msgLoadFailed   = "Не удалось загрузить бронирования"
    msgCancelFailed = "Не удалось отменить бронирование"
)

var (
    // ErrDeclined is returned when the confirmer said no; no request was made.
    ErrDeclined = errors.New("bookings: cancellation not confirmed")
    // ErrUnknownBooking is returned for an id not present in the list.
    ErrUnknownBooking = errors.New("Бронирование не найдено")
    // ErrAlreadyCancelled is returned for a booking in its terminal state.
    ErrAlreadyCancelled = errors.New("Бронирование уже отменено")
)

// Source is the backend side of the list.
type Source interface {
    MyBookings(ctx context.Context, token string) ([]model.Booking, error)
    CancelBooking(ctx context.Context, token string, id int64) (*model.Booking, error)
}

// Confirmer asks the visitor to confirm a destructive action.
type Confirmer interface {
    Confirm(prompt string) bool
}

// ConfirmFunc adapts a plain func to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Confirmed is a Confirmer that always agrees, for callers whose visitor
// has already confirmed (e.g. an explicit confirm flag in the request).
var Confirmed Confirmer = ConfirmFunc(func(string) bool { return true })

// List is the in-memory collection for one visitor.
type List struct {
    src Source

    mu     sync.Mutex
    items  []model.Booking
    errMsg string
}

func NewList(src Source) *List {
    return &List{src: src}
}

// Items returns a copy of the current collection in backend order.
func (l *List) Items() []model.Booking {
    l.mu.Lock()
    defer l.mu.Unlock()
    return append([]model.Booking(nil), l.items...)
}

// Error returns the message of the last failed operation, "" if none.
func (l *List) Error() string {
    l.mu.Lock()
    defer l.mu.Unlock()
    return l.errMsg
}

// Load replaces the collection with the backend's.  On failure the previous
// items are kept and the error text is recorded.
func (l *List) Load(ctx context.Context, token string) error {
    items, err := l.src.MyBookings(ctx, token)
    l.mu.Lock()
    defer l.mu.Unlock()
    if err != nil {
        l.errMsg = displayMessage(err, msgLoadFailed)
        return err
    }
    l.items = items
    l.errMsg = ""
    return nil
}

// Cancel asks c for confirmation and, if given, cancels booking id on the
// backend.  The matching item is then replaced by the record the backend
// returned; every other item is left as it was.
func (l *List) Cancel(ctx context.Context, token string, id int64, c Confirmer) (*model.Booking, error) {
    l.mu.Lock()
    idx := l.indexLocked(id)
    var status model.BookingStatus
    if idx >= 0 {
        status = l.items[idx].Status
    }
    l.mu.Unlock()

    if idx < 0 {
        return nil, ErrUnknownBooking
    }
    if !status.CanTransition(model.BookingCancelled) {
        return nil, ErrAlreadyCancelled
    }
    if c == nil || !c.Confirm(MsgConfirmCancel) {
        return nil, ErrDeclined
    }

    updated, err := l.src.CancelBooking(ctx, token, id)

    l.mu.Lock()
    defer l.mu.Unlock()
    if err != nil {
        l.errMsg = displayMessage(err, msgCancelFailed)
        return nil, err
    }
    l.errMsg = ""
    // The list may have been reloaded meanwhile; look the id up again.
    if i := l.indexLocked(id); i >= 0 && updated != nil {
        merged := *updated
        keepSnapshot(&merged, l.items[i])
        l.items[i] = merged
    }
    return updated, nil
}

func (l *List) indexLocked(id int64) int {
    for i := range l.items {
        if l.items[i].ID == id {
            return i
        }
    }
    return -1
}

// keepSnapshot fills the excursion fields the cancel response may omit
// from the record it replaces.
func keepSnapshot(dst *model.Booking, prev model.Booking) {
    if dst.ExcursionTitle == "" {
        dst.ExcursionTitle = prev.ExcursionTitle
    }
    if dst.ExcursionCity == "" {
        dst.ExcursionCity = prev.ExcursionCity
    }
    if dst.ExcursionCountry == "" {
        dst.ExcursionCountry = prev.ExcursionCountry
    }
    if dst.ExcursionPhoto == nil {
        dst.ExcursionPhoto = prev.ExcursionPhoto
    }
    if dst.PricePerPerson == 0 {
        dst.PricePerPerson = prev.PricePerPerson
    }
    if dst.TotalAmount == 0 {
        dst.TotalAmount = prev.TotalAmount
    }
}

// Active returns the bookings that still hold seats, in input order.
func Active(items []model.Booking) []model.Booking {
    out := []model.Booking{}
    for _, b := range items {
        if b.Status.Active() {
            out = append(out, b)
        }
    }
    return out
}

// Cancelled returns the cancelled bookings, in input order.
func Cancelled(items []model.Booking) []model.Booking {
    out := []model.Booking{}
    for _, b := range items {
        if b.Status == model.BookingCancelled {
            out = append(out, b)
        }
    }
    return out
}

func displayMessage(err error, fallback string) string {
    var re *apiclient.RequestError
    if errors.As(err, &re) && re.Message != "" {
        return re.Message
    }
    return fallback
}
