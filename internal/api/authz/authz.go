// internal/api/authz/authz.go
package authz

import (
	"context"
	"errors"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rules"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

const (
	RoleOwner      = "owner"
	RoleManager    = "manager"
	RoleSuperAdmin = "super_admin"
)

// AuthUser is the authenticated caller as resolved by the gateway. Rule
// mutations are scoped to FacilityID unless the role is super_admin.
type AuthUser struct {
	ID         int64
	Role       string
	FacilityID *int64
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx. It returns nil if
// ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

func IsSuperAdmin(user *AuthUser) bool {
	return user != nil && user.Role == RoleSuperAdmin
}

// RequireFacilityAccess checks that the caller may act on the given
// facility's rules. Super admins may act on any facility.
func RequireFacilityAccess(ctx context.Context, requestedFacilityID int64) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}

	if IsSuperAdmin(user) {
		return nil
	}

	if user.FacilityID == nil || *user.FacilityID != requestedFacilityID {
		return ErrForbidden
	}

	return nil
}

// ActorFromContext converts the request user into the rule engine's actor
// shape. Returns false if no user is authenticated.
func ActorFromContext(ctx context.Context) (rules.Actor, bool) {
	user := UserFromContext(ctx)
	if user == nil {
		return rules.Actor{}, false
	}
	return rules.Actor{
		UserID:     user.ID,
		FacilityID: user.FacilityID,
		SuperAdmin: IsSuperAdmin(user),
	}, true
}
