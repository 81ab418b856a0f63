package model

import (
    "encoding/json"
    "strings"
)

// ExcursionStatus is the moderation state of an excursion.  Only approved
// excursions are visible to shoppers; transitions are owned by the backend.
type ExcursionStatus string

const (
    ExcursionDraft         ExcursionStatus = "draft"
    ExcursionPendingReview ExcursionStatus = "pending_review"
    ExcursionApproved      ExcursionStatus = "approved"
)

// Excursion is a bookable product owned by a guide.
//
// Fields:
//  ID                     – backend excursion id (excursion_id on the wire).
//  Title, Country, City   – catalog fields used by search.
//  Description            – optional long text.
//  PricePerPerson         – price for one participant.
//  Difficulty             – free-form difficulty label.
//  Photos                 – ordered image references.
//  AvailableSlots         – capacity ceiling per time slot; nil means unlimited.
//  AcceptedPaymentMethods – comma separated list ("online,cash").
//  Status                 – moderation state.
type Excursion struct {
    ID                     int64           `json:"excursion_id"`
    Title                  string          `json:"title"`
    Country                string          `json:"country"`
    City                   string          `json:"city"`
    Description            *string         `json:"description"`
    PricePerPerson         float64         `json:"price_per_person"`
    Difficulty             string          `json:"difficulty"`
    Photos                 Photos          `json:"photos"`
    AvailableSlots         *int            `json:"available_slots"`
    AcceptedPaymentMethods string          `json:"accepted_payment_methods"`
    Status                 ExcursionStatus `json:"status"`
}

// ExcursionInput is the body guides send when creating or editing an
// excursion.  Editing an approved excursion sends it back to review on the
// backend; the storefront only reflects the returned status.
type ExcursionInput struct {
    Title                  string  `json:"title" validate:"required"`
    Country                string  `json:"country" validate:"required"`
    City                   string  `json:"city" validate:"required"`
    Difficulty             string  `json:"difficulty" validate:"required"`
    Description            *string `json:"description"`
    Photos                 Photos  `json:"photos"`
    PricePerPerson         float64 `json:"price_per_person" validate:"gt=0"`
    AcceptedPaymentMethods string  `json:"accepted_payment_methods,omitempty"`
    AvailableSlots         *int    `json:"available_slots" validate:"omitempty,gte=0"`
}

// ExcursionFilter holds the query parameters of GET /api/excursions.  Zero
// values are left out of the query string.
type ExcursionFilter struct {
    Country     string `query:"country"`
    City        string `query:"city"`
    Date        string `query:"date"`
    People      int    `query:"people"`
    HasChildren bool   `query:"has_children"`
}

// Photos is an ordered list of image references.  The backend stores it as
// one comma separated string, so it is (un)marshalled from and to that form.
// A JSON array is accepted as well.
type Photos []string

// UnmarshalJSON accepts null, a comma separated string or an array.
func (p *Photos) UnmarshalJSON(b []byte) error {
    if string(b) == "null" {
        *p = nil
        return nil
    }
    if len(b) > 0 && b[0] == '[' {
        var list []string
        if err := json.Unmarshal(b, &list); err != nil {
            return err
        }
        *p = list
        return nil
    }
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return err
    }
    *p = SplitPhotos(s)
    return nil
}

// MarshalJSON writes the comma separated form, or null when empty.
func (p Photos) MarshalJSON() ([]byte, error) {
    if len(p) == 0 {
        return []byte("null"), nil
    }
    return json.Marshal(strings.Join(p, ","))
}

// SplitPhotos splits the stored representation into references.  Inline
// data URIs ("data:image/png;base64,AAAA") contain a comma themselves, so a
// part ending in ";base64" is glued back to the part that follows it.
func SplitPhotos(s string) Photos {
    var out Photos
    parts := strings.Split(s, ",")
    for i := 0; i < len(parts); i++ {
        part := strings.TrimSpace(parts[i])
        if strings.HasPrefix(part, "data:") && strings.HasSuffix(part, ";base64") && i+1 < len(parts) {
            part = part + "," + strings.TrimSpace(parts[i+1])
            i++
        }
        if part != "" {
            out = append(out, part)
        }
    }
    return out
}

// Cover returns the first photo or "" when there is none.
func (p Photos) Cover() string {
    if len(p) == 0 {
        return ""
    }
    return p[0]
}
