package model

// User is the identity record returned by GET /users/me and the admin user
// endpoints.  It is owned by the session store and replaced wholesale on every
// profile fetch or update; nothing in the storefront mutates single fields.
//
// Fields:
//  ID          – backend user id.
//  Name        – display name.
//  Email       – login email (also the username for the JWT login form).
//  Phone       – optional E.164 phone number.
//  IsGuide     – the user applied for (or holds) a guide profile.
//  IsSuperuser – admin flag; gates the back-office proxy.
//  IsVerified  – email verification flag.
//  IsActive    – inactive users cannot log in.
type User struct {
    ID          int64   `json:"id"`
    Name        string  `json:"name"`
    Email       string  `json:"email"`
    Phone       *string `json:"phone"`
    IsGuide     bool    `json:"is_guide"`
    IsSuperuser bool    `json:"is_superuser"`
    IsVerified  bool    `json:"is_verified"`
    IsActive    bool    `json:"is_active"`
}

// Registration is the body of POST /auth/register.
type Registration struct {
    Name     string  `json:"name" validate:"required,min=2,max=50"`
    Email    string  `json:"email" validate:"required,email"`
    Password string  `json:"password" validate:"required,min=8"`
    Phone    *string `json:"phone" validate:"omitempty,e164"`
    IsGuide  bool    `json:"is_guide,omitempty"`
}

// UserUpdate is the partial body of PATCH /users/me.  Nil fields are omitted
// from the request so the backend leaves them untouched.
type UserUpdate struct {
    Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
    Phone    *string `json:"phone,omitempty" validate:"omitempty,e164"`
    Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// Empty reports whether the update carries no changes at all.
func (u UserUpdate) Empty() bool {
    return u.Name == nil && u.Phone == nil && u.Password == nil
}

// AdminUserUpdate extends UserUpdate with the flags only an admin may change.
type AdminUserUpdate struct {
    UserUpdate
    IsSuperuser *bool `json:"is_superuser,omitempty"`
    IsActive    *bool `json:"is_active,omitempty"`
    IsVerified  *bool `json:"is_verified,omitempty"`
    IsGuide     *bool `json:"is_guide,omitempty"`
}

// AccessToken is the response of POST /auth/jwt/login.
type AccessToken struct {
    AccessToken string `json:"access_token"`
    TokenType   string `json:"token_type"`
}
