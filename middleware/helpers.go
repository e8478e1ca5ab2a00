package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/services"
)

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context or invalid type")
	}
	return claims, nil
}

func intClaim(claims jwt.MapClaims, name string) (int, error) {
	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", name)
	}
	value, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number, got %T", name, raw)
	}
	if value != float64(int(value)) || int(value) <= 0 {
		return 0, fmt.Errorf("invalid value in '%s' claim: %v", name, raw)
	}
	return int(value), nil
}

func optionalIntClaim(claims jwt.MapClaims, name string) *int {
	value, err := intClaim(claims, name)
	if err != nil {
		return nil
	}
	return &value
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return intClaim(claims, jwtClaimUserID)
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	raw, ok := claims[jwtClaimRole]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	roleStr, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, raw)
	}
	role := models.UserRole(roleStr)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
	return role, nil
}

// GetScopeFromContext builds the access scope services use for row-level
// checks: who is asking, as what role, bound to which community or sport.
func GetScopeFromContext(ctx context.Context) (services.Scope, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return services.Scope{}, err
	}
	userID, err := intClaim(claims, jwtClaimUserID)
	if err != nil {
		return services.Scope{}, err
	}
	role, err := GetUserRoleFromContext(ctx)
	if err != nil {
		return services.Scope{}, err
	}
	return services.Scope{
		UserID:      userID,
		Role:        role,
		CommunityID: optionalIntClaim(claims, jwtClaimCommunityID),
		SportID:     optionalIntClaim(claims, jwtClaimSportID),
	}, nil
}
