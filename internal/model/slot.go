package model

// TimeSlot is one bookable (date, time) unit returned by the availability
// query.  It is recomputed by the backend for every (excursion, party size)
// pair and never persisted by the storefront.  Available is the backend's
// verdict at query time only; the booking submission is the authoritative
// capacity check.
type TimeSlot struct {
    Date           string `json:"date"` // YYYY-MM-DD
    Time           string `json:"time"` // HH:MM, local wall clock
    Available      bool   `json:"available"`
    AvailableSlots *int   `json:"available_slots"` // remaining seats; nil when uncapped
}

// AvailableDates is the response of GET /api/excursions/{id}/available-dates.
type AvailableDates struct {
    ExcursionID    int64      `json:"excursion_id"`
    AvailableSlots *int       `json:"available_slots"`
    TimeSlots      []TimeSlot `json:"time_slots"`
}
