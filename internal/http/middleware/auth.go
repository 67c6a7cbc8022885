package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"dms/internal/auth"
	"dms/internal/policy"
)

const (
	claimsLocalKey = "auth_claims"
	tokenLocalKey  = "auth_token"
)

// Authenticate requires a valid, unrevoked bearer token and stores its claims in locals.
// Failures are returned as 401 fiber errors for the app error handler to render.
func Authenticate(tokens *auth.TokenManager, revoker auth.Revoker, logger *zap.Logger) fiber.Handler {
	if revoker == nil {
		revoker = auth.NoopRevoker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return fiber.NewError(fiber.StatusUnauthorized, "token expired")
			}
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		revoked, err := revoker.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			logger.Error("revocation lookup failed", zap.String("request_id", RequestIDFromCtx(c)), zap.Error(err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "session store unavailable")
		}
		if revoked {
			return fiber.NewError(fiber.StatusUnauthorized, "token revoked")
		}

		c.Locals(claimsLocalKey, claims)
		c.Locals(tokenLocalKey, raw)
		return c.Next()
	}
}

// ClaimsFromCtx returns the claims stored by Authenticate.
func ClaimsFromCtx(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(claimsLocalKey).(*auth.Claims)
	return claims, ok
}

// PrincipalFromCtx returns the authenticated identity, or the zero Principal.
func PrincipalFromCtx(c *fiber.Ctx) policy.Principal {
	if claims, ok := ClaimsFromCtx(c); ok {
		return claims.Principal()
	}
	return policy.Principal{}
}

// TokenFromCtx returns the raw bearer token accepted by Authenticate.
func TokenFromCtx(c *fiber.Ctx) string {
	s, _ := c.Locals(tokenLocalKey).(string)
	return s
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
