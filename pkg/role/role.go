package role

// Role is a subscription tier. The tier gates the habit limit and nothing
// else; there is deliberately no intermediate tier.
type Role string

const (
	RoleFree Role = "free"
	RolePro  Role = "pro"
)

// Valid reports whether r is a known tier.
func (r Role) Valid() bool {
	return r == RoleFree || r == RolePro
}

// Parse normalizes a stored or transmitted role string. Unknown or empty
// values resolve to free: an unidentified user must never be treated as pro.
func Parse(s string) Role {
	if Role(s) == RolePro {
		return RolePro
	}
	return RoleFree
}

// User is the application's view of an account. The authoritative copy lives
// in the users_profiles table; everything else in the system holds a cached,
// possibly stale, snapshot of it.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// CurrentRole returns the user's tier, defaulting to free when the stored
// value is unknown or missing.
func (u User) CurrentRole() Role {
	return Parse(string(u.Role))
}

// ApplyUpgrade returns u with target applied under the monotonic transition
// rule: the only transition that ever takes effect is free to pro. A request
// to set free on a pro user is a no-op rather than a downgrade, and a request
// matching the current role is an idempotent no-op. The second return value
// reports whether the role actually changed, so callers know whether cached
// role reads must be invalidated.
func ApplyUpgrade(u User, target Role) (User, bool) {
	if target != RolePro {
		return u, false
	}
	if u.CurrentRole() == RolePro {
		return u, false
	}
	u.Role = RolePro
	return u, true
}
