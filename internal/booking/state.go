package booking

// State is the position of a booking flow in its state machine.
//
//  Idle → PeopleSelected → DateSelected → TimeSelected → Submitting → Confirmed | Failed
//
// Changing the party size returns to PeopleSelected from any state.
type State int

const (
    Idle State = iota
    PeopleSelected
    DateSelected
    TimeSelected
    Submitting
    Confirmed
    Failed
)

func (s State) String() string {
    switch s {
    case Idle:
        return "idle"
    case PeopleSelected:
        return "people_selected"
    case DateSelected:
        return "date_selected"
    case TimeSelected:
        return "time_selected"
    case Submitting:
        return "submitting"
    case Confirmed:
        return "confirmed"
    case Failed:
        return "failed"
    }
    return "unknown"
}

// MarshalText lets snapshots carry the state by name.
func (s State) MarshalText() ([]byte, error) {
    return []byte(s.String()), nil
}
