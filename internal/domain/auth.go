package domain

// ============================================================
// Staff auth: Request / Response types
// ============================================================

// Role is the staff role that decides which admin areas a user may open.
type Role string

const (
	RoleOwner        Role = "OWNER"
	RoleProfessional Role = "PROFESSIONAL"
	RoleReceptionist Role = "RECEPTIONIST"
)

// Area is a section of the admin panel.
type Area string

const (
	AreaDashboard     Area = "dashboard"
	AreaAgenda        Area = "agenda"
	AreaClients       Area = "clients"
	AreaServices      Area = "services"
	AreaProfessionals Area = "professionals"
	AreaFinance       Area = "finance"
	AreaMarketing     Area = "marketing"
	AreaSettings      Area = "settings"
)

// AllAreas lists the admin areas in menu order.
var AllAreas = []Area{
	AreaDashboard,
	AreaAgenda,
	AreaClients,
	AreaServices,
	AreaProfessionals,
	AreaFinance,
	AreaMarketing,
	AreaSettings,
}

var roleAreas = map[Role][]Area{
	RoleReceptionist: {AreaDashboard, AreaAgenda, AreaClients},
	RoleProfessional: {AreaAgenda, AreaClients},
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleProfessional || r == RoleReceptionist
}

// Areas returns the admin areas the role may open.
func (r Role) Areas() []Area {
	if r == RoleOwner {
		return append([]Area(nil), AllAreas...)
	}
	return append([]Area(nil), roleAreas[r]...)
}

// CanAccess reports whether the role may open the area.
func (r Role) CanAccess(a Area) bool {
	if r == RoleOwner {
		return true
	}
	for _, allowed := range roleAreas[r] {
		if allowed == a {
			return true
		}
	}
	return false
}

// User is a staff member able to sign into the admin panel.
type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	ProfessionalID string `json:"professionalId,omitempty"`
	PasswordHash   string `json:"-"`
}

// Principal is the authenticated caller carried in the request context.
type Principal struct {
	UserID         string
	Role           Role
	ProfessionalID string
}

// OwnsAppointmentOf reports whether p may act on an appointment of the given
// professional. A PROFESSIONAL is limited to their own appointments.
func (p Principal) OwnsAppointmentOf(professionalID string) bool {
	if p.Role != RoleProfessional {
		return true
	}
	return p.ProfessionalID != "" && p.ProfessionalID == professionalID
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	User        User   `json:"user"`
	Areas       []Area `json:"areas"`
}

// MeResponse is the body for GET /v1/auth/me.
type MeResponse struct {
	User  User   `json:"user"`
	Areas []Area `json:"areas"`
}
