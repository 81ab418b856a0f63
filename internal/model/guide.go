package model

// Guide is the guide profile attached to a user.
type Guide struct {
    ID     int64   `json:"guide_id"`
    UserID int64   `json:"user_id"`
    Photo  *string `json:"photo"`
}

// GuideUpdate is the body of PATCH /api/guides/me.
type GuideUpdate struct {
    Photo *string `json:"photo"`
}

// GuideCheck is the response of GET /api/guides/check.
type GuideCheck struct {
    IsGuide bool `json:"is_guide"`
}

// GuideBooking is one row of the guide bookings calendar, including the
// client contact data the guide needs to reach the party.
type GuideBooking struct {
    ID             int64         `json:"booking_id"`
    ExcursionID    int64         `json:"excursion_id"`
    ExcursionTitle string        `json:"excursion_title"`
    Date           string        `json:"date"`
    NumberOfPeople int           `json:"number_of_people"`
    Status         BookingStatus `json:"status"`
    PaymentStatus  string        `json:"payment_status"`
    ClientName     string        `json:"client_name"`
    ClientEmail    string        `json:"client_email"`
    ClientPhone    *string       `json:"client_phone"`
}

// AdminGuide is a guide row as listed by the admin endpoints.
type AdminGuide struct {
    ID              int64   `json:"guide_id"`
    UserID          int64   `json:"user_id"`
    Photo           *string `json:"photo"`
    UserName        string  `json:"user_name"`
    UserEmail       string  `json:"user_email"`
    UserPhone       *string `json:"user_phone"`
    IsGuideApproved bool    `json:"is_guide_approved"`
}

// AdminBooking is a booking row as listed by the admin endpoints.
type AdminBooking struct {
    ID             int64         `json:"booking_id"`
    Date           string        `json:"date"`
    NumberOfPeople int           `json:"number_of_people"`
    Status         BookingStatus `json:"status"`
    PaymentStatus  string        `json:"payment_status"`
    ExcursionID    int64         `json:"excursion_id"`
    ExcursionTitle string        `json:"excursion_title"`
    ClientID       int64         `json:"client_id"`
    ClientName     string        `json:"client_name"`
    ClientEmail    string        `json:"client_email"`
    TotalAmount    float64       `json:"total_amount"`
}
