package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"donorcrm/internal/messages"
)

// TokenIssuer is stamped into every token this service signs.
const TokenIssuer = "donorcrm"

type TokenClaims struct {
	Sub      string   `json:"sub"`
	Roles    []string `json:"roles"`
	Locale   string   `json:"locale,omitempty"`
	Exp      int64    `json:"exp"`
	Issuer   string   `json:"iss"`
	Audience string   `json:"aud,omitempty"`
}

type userKey string

const (
	userIDKey userKey = "user_id"
	rolesKey  userKey = "roles"
)

var (
	errMalformed = errors.New("invalid token")
	errSignature = errors.New("invalid signature")
	errExpired   = errors.New("token expired")
	errNoExpiry  = errors.New("token has no expiry")
	errIssuer    = errors.New("unexpected issuer")
)

func SignJWT(secret string, claims TokenClaims) (string, error) {
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	data := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	return data + "." + hmacSign(secret, data), nil
}

// IssueToken signs a token for user with roles valid for ttl.
func IssueToken(secret, user string, roles []string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", errors.New("user is required")
	}
	return SignJWT(secret, TokenClaims{
		Sub:    user,
		Roles:  roles,
		Exp:    time.Now().Add(ttl).Unix(),
		Issuer: TokenIssuer,
	})
}

func hmacSign(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifyJWT(secret, token string) (*TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errMalformed
	}
	expected := hmacSign(secret, parts[0]+"."+parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, errSignature
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errMalformed
	}
	var claims TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, errMalformed
	}
	if claims.Exp <= 0 {
		return nil, errNoExpiry
	}
	if time.Now().Unix() > claims.Exp {
		return nil, errExpired
	}
	if claims.Issuer != TokenIssuer {
		return nil, errIssuer
	}
	if strings.TrimSpace(claims.Sub) == "" {
		return nil, errMalformed
	}
	return &claims, nil
}

// AuthJWT requires a bearer token and stores its user and roles in the
// request context. A locale claim applies only when the request carries no
// X-Locale header.
func AuthJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", messages.MissingAuth)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", messages.MissingAuth)
				return
			}
			claims, err := VerifyJWT(secret, strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", messages.InvalidToken)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, claims.Sub)
			ctx = context.WithValue(ctx, rolesKey, claims.Roles)
			if claims.Locale != "" && r.Header.Get("X-Locale") == "" {
				base, _ := messages.Match(claims.Locale).Base()
				ctx = context.WithValue(ctx, LocaleKey, base.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func RolesFromContext(ctx context.Context) []string {
	if v, ok := ctx.Value(rolesKey).([]string); ok {
		return v
	}
	return nil
}

// ContextWithUser attaches a user and roles without a token, for jobs and
// tests.
func ContextWithUser(ctx context.Context, userID string, roles ...string) context.Context {
	if strings.TrimSpace(userID) == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, rolesKey, roles)
}
