package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"tastytracker/database"
	"tastytracker/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const UserContextKey contextKey = "user"

type Claims struct {
	UserID uuid.UUID   `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

var jwtSecret []byte

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func GenerateToken(profile *models.Profile, expiration time.Duration) (string, error) {
	claims := &Claims{
		UserID: profile.ID,
		Email:  profile.Email,
		Role:   profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

func forbidden(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// AuthMiddleware accepts the session cookie or a Bearer token, loads the
// full profile row and stores it on the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenString string
		cookie, err := r.Cookie("token")
		if err == nil {
			tokenString = cookie.Value
		}

		if tokenString == "" {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					tokenString = parts[1]
				}
			}
		}

		if tokenString == "" {
			unauthorized(w)
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			// Clear stale cookie
			http.SetCookie(w, &http.Cookie{
				Name:     "token",
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
			})
			unauthorized(w)
			return
		}

		var profile models.Profile
		if err := database.GetDB().First(&profile, "id = ?", claims.UserID).Error; err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, &profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePasswordChange blocks everything but the password-change
// endpoint until an invited or seeded profile sets its own password.
func RequirePasswordChange(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile := GetUserFromContext(r.Context())
		if profile != nil && profile.MustChangePassword {
			if r.URL.Path == "/api/auth/change-password" {
				next.ServeHTTP(w, r)
				return
			}
			forbidden(w, "password change required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile := GetUserFromContext(r.Context())
			if profile == nil {
				unauthorized(w)
				return
			}

			for _, role := range roles {
				if profile.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			forbidden(w, "forbidden")
		})
	}
}

func GetUserFromContext(ctx context.Context) *models.Profile {
	profile, ok := ctx.Value(UserContextKey).(*models.Profile)
	if !ok {
		return nil
	}
	return profile
}
