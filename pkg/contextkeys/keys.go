package contextkeys

type contextKey string

// ClaimsKey holds the authenticated caller's *dto.UserClaims.
const ClaimsKey contextKey = "claims"
