package domain

import "time"

// Role is the acting role a caller carries into service operations. It is
// resolved once per update and passed explicitly, never read from ambient
// state.
type Role string

const (
	RoleShopper   Role = "shopper"
	RoleAssistant Role = "assistant"
	RoleManager   Role = "manager"
)

// Staff reports whether the role may drive order transitions and admin surfaces.
func (r Role) Staff() bool {
	return r == RoleAssistant || r == RoleManager
}

type User struct {
	ID                 int64
	TelegramID         int64
	FirstName          string
	Username           string
	Role               Role
	ReferralCode       string // set for staff only
	ReferralSalesCount int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
