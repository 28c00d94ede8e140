package types

// UserProfile is the authenticated user record returned by the profile
// endpoint. Staff users are routed to the admin dashboard.
type UserProfile struct {
	ID            int    `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name,omitempty"`
	FullName      string `json:"full_name,omitempty"`
	IsStaff       bool   `json:"is_staff"`
	IsSuperuser   bool   `json:"is_superuser"`
	EmailVerified bool   `json:"email_verified"`
}

// IsAdmin reports whether the profile should land on the admin dashboard.
func (u UserProfile) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

// DisplayName picks the friendliest non-empty name for the shell header.
func (u UserProfile) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

// TokenPair is the bearer credential set issued at login.
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}
