// Package booking drives the selection-and-submit flow of one visitor on one
// excursion: party size, then a date with availability, then a time slot,
// then the booking request.
package booking

import (
    "context"
    "fmt"
    "sync"
    "time"

    "github.com/iliyamo/excursion-storefront/internal/availability"
    "github.com/iliyamo/excursion-storefront/internal/model"
)

// InstantLayout is the wire form of the booking instant.
const InstantLayout = "2006-01-02T15:04:05.000Z"

// SlotFetcher loads the slots of an excursion for a party size.
type SlotFetcher interface {
    AvailableSlots(ctx context.Context, excursionID int64, people int) ([]model.TimeSlot, error)
}

// Booker submits a booking.
type Booker interface {
    CreateBooking(ctx context.Context, token string, req model.BookingRequest) (*model.BookingConfirmation, error)
}

// TokenSource yields the current access token, "" when signed out.  A
// *session.Store satisfies it.
type TokenSource interface {
    Token() string
}

// Snapshot is a consistent copy of the controller state handed to
// subscribers and rendered by the storefront.
type Snapshot struct {
    ExcursionID    int64                    `json:"excursion_id"`
    State          State                    `json:"state"`
    People         int                      `json:"people"`
    HasChildren    bool                     `json:"has_children"`
    Date           string                   `json:"selected_date,omitempty"`
    Time           string                   `json:"selected_time,omitempty"`
    Loading        bool                     `json:"loading"`
    Slots          []availability.DateGroup `json:"slots"`
    AvailableDates []string                 `json:"available_dates"`
    AvailableTimes []model.TimeSlot         `json:"available_times"`
    Error          string                   `json:"error,omitempty"`
    Message        string                   `json:"message,omitempty"`
    LastBooking    *model.Booking           `json:"last_booking,omitempty"`
}

// Controller is the booking flow of one visitor on one excursion.  Methods
// are safe for concurrent use; network calls run without the lock held.
//
// Availability results are tagged with the generation current when the
// request started.  SetPeople bumps the generation, so a response for an
// old party size is dropped instead of being shown against the new one.
type Controller struct {
    excursionID int64
    slots       SlotFetcher
    booker      Booker
    session     TokenSource
    loc         *time.Location

    mu          sync.Mutex
    state       State
    people      int
    hasChildren bool
    date        string
    timeOfDay   string
    vm          *availability.ViewModel
    loading     bool
    errMsg      string
    message     string
    last        *model.Booking
    gen         uint64

    subs     map[int]func(Snapshot)
    nextSub  int
    onBooked func(model.Booking)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLocation sets the zone the selected date and time are read in.  The
// default is time.Local.
func WithLocation(loc *time.Location) Option {
    return func(c *Controller) {
        if loc != nil {
            c.loc = loc
        }
    }
}

// New returns a controller in the Idle state with a party of one.
func New(excursionID int64, slots SlotFetcher, booker Booker, session TokenSource, opts ...Option) *Controller {
    c := &Controller{
        excursionID: excursionID,
        slots:       slots,
        booker:      booker,
        session:     session,
        loc:         time.Local,
        people:      1,
        subs:        make(map[int]func(Snapshot)),
    }
    for _, o := range opts {
        o(c)
    }
    return c
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
    c.mu.Lock()
    id := c.nextSub
    c.nextSub++
    c.subs[id] = fn
    c.mu.Unlock()
    return func() {
        c.mu.Lock()
        delete(c.subs, id)
        c.mu.Unlock()
    }
}

// OnBooked registers a hook run after each confirmed booking.
func (c *Controller) OnBooked(fn func(model.Booking)) {
    c.mu.Lock()
    c.onBooked = fn
    c.mu.Unlock()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
    s := Snapshot{
        ExcursionID:    c.excursionID,
        State:          c.state,
        People:         c.people,
        HasChildren:    c.hasChildren,
        Date:           c.date,
        Time:           c.timeOfDay,
        Loading:        c.loading,
        Slots:          c.vm.GroupedByDate(),
        AvailableDates: c.vm.AvailableDates(),
        AvailableTimes: []model.TimeSlot{},
        Error:          c.errMsg,
        Message:        c.message,
    }
    if c.date != "" {
        s.AvailableTimes = c.vm.AvailableTimesFor(c.date)
    }
    if c.last != nil {
        b := *c.last
        s.LastBooking = &b
    }
    return s
}

// commit releases the lock and notifies subscribers with the state as it
// was at release.
func (c *Controller) commit() {
    snap := c.snapshotLocked()
    subs := make([]func(Snapshot), 0, len(c.subs))
    for _, fn := range c.subs {
        subs = append(subs, fn)
    }
    c.mu.Unlock()
    for _, fn := range subs {
        fn(snap)
    }
}

// SetPeople changes the party size.  The date, the time, any error and any
// message are discarded and the loaded availability becomes invalid; call
// RefreshAvailability to load slots for the new size.
func (c *Controller) SetPeople(n int) error {
    if n < 1 {
        return ErrInvalidPeople
    }
    c.mu.Lock()
    c.people = n
    c.date, c.timeOfDay = "", ""
    c.errMsg, c.message = "", ""
    c.vm = nil
    c.gen++
    c.state = PeopleSelected
    c.commit()
    return nil
}

// SetHasChildren records whether the party includes children.
func (c *Controller) SetHasChildren(v bool) {
    c.mu.Lock()
    c.hasChildren = v
    c.commit()
}

// RefreshAvailability loads the slots for the current party size.  A result
// that arrives after the party size changed is discarded and
// ErrStaleAvailability is returned.  On failure the error text is stored in
// the snapshot and the previous selection is left alone.
func (c *Controller) RefreshAvailability(ctx context.Context) error {
    c.mu.Lock()
    gen, people := c.gen, c.people
    c.loading = true
    c.commit()

    slots, err := c.slots.AvailableSlots(ctx, c.excursionID, people)

    c.mu.Lock()
    if gen != c.gen {
        c.mu.Unlock()
        return ErrStaleAvailability
    }
    c.loading = false
    if err != nil {
        c.errMsg = slotsFailureMessage(err)
        c.commit()
        return err
    }
    c.vm = availability.New(people, slots)
    if c.date != "" && !c.vm.HasAvailability(c.date) {
        c.date, c.timeOfDay = "", ""
        if c.state == DateSelected || c.state == TimeSelected {
            c.state = PeopleSelected
        }
    } else if c.timeOfDay != "" && !c.vm.Has(c.date, c.timeOfDay) {
        c.timeOfDay = ""
        if c.state == TimeSelected {
            c.state = DateSelected
        }
    }
    if c.state == Idle {
        c.state = PeopleSelected
    }
    c.commit()
    return nil
}

// SelectDate picks a date.  Only dates with at least one bookable slot in
// the loaded availability are accepted.  The selected time is cleared.
func (c *Controller) SelectDate(date string) error {
    c.mu.Lock()
    if c.vm == nil || c.vm.People() != c.people || !c.vm.HasAvailability(date) {
        c.mu.Unlock()
        return ErrDateUnavailable
    }
    c.date = date
    c.timeOfDay = ""
    c.errMsg = ""
    c.state = DateSelected
    c.commit()
    return nil
}

// SelectTime picks one of the bookable times of the selected date.
func (c *Controller) SelectTime(tm string) error {
    c.mu.Lock()
    if c.date == "" {
        c.mu.Unlock()
        return ErrNoDate
    }
    if c.vm == nil || c.vm.People() != c.people || !c.vm.Has(c.date, tm) {
        c.mu.Unlock()
        return ErrTimeUnavailable
    }
    c.timeOfDay = tm
    c.errMsg = ""
    c.state = TimeSelected
    c.commit()
    return nil
}

// Submit books the selected slot.  Preconditions are checked in order
// (signed in, date chosen, time chosen); a failed precondition stores its
// message and returns its error without any network call.
//
// Every call issues its own request; identical submissions are not merged.
// On success the selection is cleared and availability is reloaded for the
// same party size.  On failure the selection is kept for a retry.
func (c *Controller) Submit(ctx context.Context) (*model.BookingConfirmation, error) {
    token := c.session.Token()

    c.mu.Lock()
    var pre error
    switch {
    case token == "":
        pre = ErrSignInRequired
    case c.date == "":
        pre = ErrNoDate
    case c.timeOfDay == "":
        pre = ErrNoTime
    }
    if pre != nil {
        c.errMsg = pre.Error()
        c.message = ""
        c.commit()
        return nil, pre
    }

    instant, err := ComposeInstant(c.date, c.timeOfDay, c.loc)
    if err != nil {
        c.errMsg = ErrNoTime.Error()
        c.commit()
        return nil, err
    }
    req := model.BookingRequest{
        ExcursionID:    c.excursionID,
        Date:           instant,
        NumberOfPeople: c.people,
        HasChildren:    c.hasChildren,
    }
    c.state = Submitting
    c.errMsg, c.message = "", ""
    c.commit()

    conf, err := c.booker.CreateBooking(ctx, token, req)

    c.mu.Lock()
    if err != nil {
        c.state = Failed
        c.errMsg = failureMessage(err)
        c.commit()
        return nil, err
    }
    c.state = Confirmed
    c.message = conf.Message
    if c.message == "" {
        c.message = MsgBooked
    }
    b := conf.Booking
    c.last = &b
    c.date, c.timeOfDay = "", ""
    hook := c.onBooked
    c.commit()

    if hook != nil {
        hook(b)
    }
    // The slot just taken may now be exhausted.  A failed reload is stored
    // in the snapshot; the booking itself has succeeded.
    _ = c.RefreshAvailability(ctx)
    return conf, nil
}

// ComposeInstant reads date ("YYYY-MM-DD") and tm ("HH:MM") as wall-clock
// time in loc and renders the instant in UTC with millisecond precision.
func ComposeInstant(date, tm string, loc *time.Location) (string, error) {
    if loc == nil {
        loc = time.Local
    }
    for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
        t, err := time.ParseInLocation(layout, date+"T"+tm, loc)
        if err == nil {
            return t.UTC().Format(InstantLayout), nil
        }
    }
    return "", fmt.Errorf("booking: invalid date/time %q %q", date, tm)
}
