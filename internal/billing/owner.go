package billing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type OwnerKind string

const (
	OwnerClub         OwnerKind = "club"
	OwnerOrganization OwnerKind = "organization"
)

func (k OwnerKind) Valid() bool {
	return k == OwnerClub || k == OwnerOrganization
}

// Owner identifies the club or organization a plan or student belongs to.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// ParseOwner converts boundary strings into an Owner. Accepts "org" as shorthand.
func ParseOwner(kind, id string) (Owner, error) {
	k := OwnerKind(strings.ToLower(strings.TrimSpace(kind)))
	if k == "org" {
		k = OwnerOrganization
	}
	if !k.Valid() {
		return Owner{}, NewFieldError("ParseOwner", "owner_kind", ErrInvalidOwner)
	}
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil || parsed == uuid.Nil {
		return Owner{}, NewFieldError("ParseOwner", "owner_id", ErrInvalidOwner)
	}
	return Owner{Kind: k, ID: parsed}, nil
}

func (o Owner) IsZero() bool {
	return o.Kind == "" && o.ID == uuid.Nil
}

func (o Owner) String() string {
	return fmt.Sprintf("%s:%s", o.Kind, o.ID)
}
