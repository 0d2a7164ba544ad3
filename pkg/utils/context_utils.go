package utils

import (
	"context"

	"employee-management/internal/dto"
	"employee-management/pkg/contextkeys"
	apperrors "employee-management/pkg/errors"
)

func GetClaimsFromContext(ctx context.Context) (*dto.UserClaims, error) {
	claims, ok := ctx.Value(contextkeys.ClaimsKey).(*dto.UserClaims)
	if !ok || claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}

func ContextWithClaims(ctx context.Context, claims *dto.UserClaims) context.Context {
	return context.WithValue(ctx, contextkeys.ClaimsKey, claims)
}

// CanActFor reports whether the caller may operate on empID's resources.
func CanActFor(claims *dto.UserClaims, empID string) bool {
	if claims == nil {
		return false
	}
	return claims.EmpID == empID || claims.IsAdmin()
}
