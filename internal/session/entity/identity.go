package entity

// Role is drawn from a closed set. Global roles see every hotel; the rest are
// limited to their affiliations.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAuditor    Role = "auditor"
	RoleHotelAdmin Role = "hotel_admin"
	RoleHotelAux   Role = "hotel_aux"
	RoleHotelGuest Role = "hotel_guest"
)

// IsGlobal reports whether the role may issue unscoped requests.
func (r Role) IsGlobal() bool {
	return r == RoleSuperAdmin || r == RoleAuditor
}

// ReadOnly reports whether the role may not mutate anything.
func (r Role) ReadOnly() bool {
	return r == RoleAuditor || r == RoleHotelGuest
}

// Valid reports whether r belongs to the known set.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAuditor, RoleHotelAdmin, RoleHotelAux, RoleHotelGuest:
		return true
	}
	return false
}

// Identity is the authenticated principal returned by the backend at login.
type Identity struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Role     Role    `json:"role"`
	Hotels   []int64 `json:"hotels"`
}

// AffiliatedWith reports whether the identity lists hotelID.
func (i *Identity) AffiliatedWith(hotelID int64) bool {
	for _, h := range i.Hotels {
		if h == hotelID {
			return true
		}
	}
	return false
}

// CanActScoped is false for hotel-scoped roles with no affiliation.
func (i *Identity) CanActScoped() bool {
	return i.Role.IsGlobal() || len(i.Hotels) > 0
}

// Tenant is a hotel.
type Tenant struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

// Snapshot is everything the store persists for reload continuity.
type Snapshot struct {
	Credential  string    `json:"credential,omitempty"`
	Identity    *Identity `json:"identity,omitempty"`
	ActiveScope int64     `json:"active_scope,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
}

// LoggedIn reports whether the snapshot holds a session.
func (s Snapshot) LoggedIn() bool {
	return s.Credential != "" && s.Identity != nil
}
