// Package availability turns the flat list of time slots returned by the
// backend for one excursion and party size into the date-grouped view the
// booking flow renders.  Everything here is pure: no I/O, no shared state.
package availability

import (
    "sort"

    "github.com/iliyamo/excursion-storefront/internal/model"
)

// DateGroup is every slot of one calendar date, ordered by time.
type DateGroup struct {
    Date  string           `json:"date"`
    Slots []model.TimeSlot `json:"slots"`
}

// ViewModel is an immutable grouping of slots fetched for a given party
// size.  The zero value and a nil *ViewModel both behave as "no slots".
type ViewModel struct {
    people int
    groups []DateGroup
    index  map[string]int
}

// New groups slots by date.  The caller's slice is not modified.  Dates and
// times are the backend's "YYYY-MM-DD" and "HH:MM" strings, which sort
// chronologically as plain strings.
func New(people int, slots []model.TimeSlot) *ViewModel {
    vm := &ViewModel{people: people, index: make(map[string]int)}
    for _, s := range slots {
        i, ok := vm.index[s.Date]
        if !ok {
            i = len(vm.groups)
            vm.index[s.Date] = i
            vm.groups = append(vm.groups, DateGroup{Date: s.Date})
        }
        vm.groups[i].Slots = append(vm.groups[i].Slots, s)
    }

    sort.SliceStable(vm.groups, func(a, b int) bool { return vm.groups[a].Date < vm.groups[b].Date })
    for i := range vm.groups {
        g := vm.groups[i].Slots
        sort.SliceStable(g, func(a, b int) bool { return g[a].Time < g[b].Time })
        vm.index[vm.groups[i].Date] = i
    }
    return vm
}

// People is the party size the slots were fetched for.
func (vm *ViewModel) People() int {
    if vm == nil {
        return 0
    }
    return vm.people
}

// GroupedByDate returns the groups in date order.  The result is a copy.
func (vm *ViewModel) GroupedByDate() []DateGroup {
    if vm == nil {
        return nil
    }
    out := make([]DateGroup, len(vm.groups))
    for i, g := range vm.groups {
        out[i] = DateGroup{Date: g.Date, Slots: append([]model.TimeSlot(nil), g.Slots...)}
    }
    return out
}

// ByDate is the map view of GroupedByDate.
func (vm *ViewModel) ByDate() map[string][]model.TimeSlot {
    out := make(map[string][]model.TimeSlot)
    if vm == nil {
        return out
    }
    for _, g := range vm.groups {
        out[g.Date] = append([]model.TimeSlot(nil), g.Slots...)
    }
    return out
}

// AvailableTimesFor returns the bookable slots of date.  An unknown date
// yields an empty, non-nil slice.
func (vm *ViewModel) AvailableTimesFor(date string) []model.TimeSlot {
    out := []model.TimeSlot{}
    if vm == nil {
        return out
    }
    i, ok := vm.index[date]
    if !ok {
        return out
    }
    for _, s := range vm.groups[i].Slots {
        if s.Available {
            out = append(out, s)
        }
    }
    return out
}

// HasAvailability reports whether date has at least one bookable slot.
func (vm *ViewModel) HasAvailability(date string) bool {
    return len(vm.AvailableTimesFor(date)) > 0
}

// Dates lists every date that has any slot, bookable or not.
func (vm *ViewModel) Dates() []string {
    if vm == nil {
        return nil
    }
    out := make([]string, 0, len(vm.groups))
    for _, g := range vm.groups {
        out = append(out, g.Date)
    }
    return out
}

// AvailableDates lists the dates a visitor can actually pick.
func (vm *ViewModel) AvailableDates() []string {
    if vm == nil {
        return nil
    }
    var out []string
    for _, g := range vm.groups {
        if vm.HasAvailability(g.Date) {
            out = append(out, g.Date)
        }
    }
    return out
}

// Has reports whether time on date is one of the bookable slots.
func (vm *ViewModel) Has(date, time string) bool {
    for _, s := range vm.AvailableTimesFor(date) {
        if s.Time == time {
            return true
        }
    }
    return false
}
