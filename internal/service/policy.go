package service

import (
	"fmt"

	"primetrade-server/internal/models"

	"github.com/google/uuid"
)

// ErrAdminRequired is returned when an admin-only action is attempted by a regular user.
var ErrAdminRequired = fmt.Errorf("%s %w", models.RoleAdmin, models.ErrForbidden)

// DeleteRule says who may delete a resource.
type DeleteRule int

const (
	// DeleteAdminOnly: only admins delete, and a non-admin is refused before any lookup.
	DeleteAdminOnly DeleteRule = iota
	// DeleteOwnerOnly: only the owner deletes; anyone else sees the resource as missing.
	DeleteOwnerOnly
)

// ResourcePolicy is the ownership/role decision table for one resource kind.
type ResourcePolicy struct {
	Name   string
	Delete DeleteRule
}

var (
	ItemPolicy = ResourcePolicy{Name: "item", Delete: DeleteAdminOnly}
	TaskPolicy = ResourcePolicy{Name: "task", Delete: DeleteOwnerOnly}
)

// ListScope returns the owner filter for list queries; nil means everything.
func (p ResourcePolicy) ListScope(identity *models.Identity) *uuid.UUID {
	if identity.IsAdmin() {
		return nil
	}
	id := identity.ID
	return &id
}

// CanView allows the owner and admins.
func (p ResourcePolicy) CanView(identity *models.Identity, ownerID uuid.UUID) bool {
	return identity.IsAdmin() || identity.ID == ownerID
}

// CanModify allows the owner and admins.
func (p ResourcePolicy) CanModify(identity *models.Identity, ownerID uuid.UUID) bool {
	return identity.IsAdmin() || identity.ID == ownerID
}

// PreDeleteCheck runs before the resource is loaded.
func (p ResourcePolicy) PreDeleteCheck(identity *models.Identity) error {
	if p.Delete == DeleteAdminOnly && !identity.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

// CanDelete runs once the resource is loaded.
func (p ResourcePolicy) CanDelete(identity *models.Identity, ownerID uuid.UUID) bool {
	switch p.Delete {
	case DeleteAdminOnly:
		return identity.IsAdmin()
	case DeleteOwnerOnly:
		return identity.ID == ownerID
	}
	return false
}
