package goal

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CanContribute indica se o papel pode aportar, criar itens e pagar.
func (r Role) CanContribute() bool {
	return r == RoleOwner || r == RoleEditor
}

func (r Role) CanManage() bool {
	return r == RoleOwner
}

type Member struct {
	GoalId   ulid.ULID `json:"goalId"`
	UserId   uuid.UUID `json:"userId"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}
