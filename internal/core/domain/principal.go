package domain

// A Principal is the server-side view of an authenticated caller.
// The admin flag is resolved by the external auth service on every
// request; a role claim parsed on the client is presentation-only.
type Principal struct {
	UserID string
	Admin  bool
}
