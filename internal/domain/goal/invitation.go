package goal

import (
	"errors"
	"strings"
	"time"

	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const DefaultInvitationTTL = 7 * 24 * time.Hour

type Invitation struct {
	Id        ulid.ULID  `json:"id"`
	GoalId    ulid.ULID  `json:"goalId"`
	InvitedBy uuid.UUID  `json:"invitedBy"`
	Role      Role       `json:"role"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	ClaimedBy *uuid.UUID `json:"claimedBy,omitempty"`
	ClaimedAt *time.Time `json:"claimedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (i *Invitation) IsClaimable(now time.Time) bool {
	return i.ClaimedAt == nil && now.Before(i.ExpiresAt)
}

// IssuedInvitation é devolvida apenas uma vez, na criação; o token em claro
// não é persistido.
type IssuedInvitation struct {
	Invitation *Invitation `json:"invitation"`
	Token      string      `json:"token"`
}

func formatInvitationToken(id ulid.ULID, secret string) string {
	return id.String() + "." + secret
}

func parseInvitationToken(token string) (ulid.ULID, string, error) {
	idPart, secret, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || secret == "" {
		return ulid.ULID{}, "", errors.New("malformed invitation token")
	}
	id, err := pkg.ParseULID(idPart)
	if err != nil {
		return ulid.ULID{}, "", err
	}
	return id, secret, nil
}
