package appMiddleware

import "github.com/golang-jwt/jwt/v5"

type contextKey string

const UserIDKey contextKey = "userID"
const UserRoleKey contextKey = "userRole"

// Claims are the session claims carried on every collaborator call. Token
// issuance happens in the external auth service; this module only validates.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// --- SECURITY WARNING ---
// The secret must be loaded from secure configuration in deployment; this
// default exists for local development only.
var JwtSecretKey = []byte("replace-with-secure-env-var")
