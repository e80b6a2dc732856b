package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	token, err := IssueToken("s3cret", "jane@example.org", []string{"Sales User"}, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyJWT("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", claims.Sub)
	assert.Equal(t, []string{"Sales User"}, claims.Roles)

	_, err = VerifyJWT("other", token)
	assert.ErrorIs(t, err, errSignature)

	expired, err := IssueToken("s3cret", "jane@example.org", nil, -time.Minute)
	require.NoError(t, err)
	_, err = VerifyJWT("s3cret", expired)
	assert.ErrorIs(t, err, errExpired)

	foreign, err := SignJWT("s3cret", TokenClaims{Sub: "x", Issuer: "elsewhere", Exp: time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)
	_, err = VerifyJWT("s3cret", foreign)
	assert.ErrorIs(t, err, errIssuer)

	_, err = IssueToken("s3cret", " ", nil, time.Hour)
	assert.Error(t, err)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	forever, err := SignJWT("s3cret", TokenClaims{Sub: "jane@example.org", Issuer: TokenIssuer})
	require.NoError(t, err)
	_, err = VerifyJWT("s3cret", forever)
	assert.ErrorIs(t, err, errNoExpiry)
}

func TestAuthJWTRejectsMissingToken(t *testing.T) {
	h := I18N("en", nil)(AuthJWT("s3cret")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})))
	req := httptest.NewRequest(http.MethodGet, "/api/donors/D-1", nil)
	req.Header.Set("X-Locale", "ur")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "unauthorized", body["error"])
	assert.Equal(t, "اجازت نامہ موجود نہیں", body["message"])
}

func TestAuthJWTStoresUserAndRoles(t *testing.T) {
	token, err := SignJWT("s3cret", TokenClaims{
		Sub:    "jane@example.org",
		Roles:  []string{"Sales Manager"},
		Locale: "ur",
		Exp:    time.Now().Add(time.Hour).Unix(),
		Issuer: TokenIssuer,
	})
	require.NoError(t, err)

	var user, locale string
	var roles []string
	h := AuthJWT("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = UserIDFromContext(r.Context())
		roles = RolesFromContext(r.Context())
		locale = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "jane@example.org", user)
	assert.Equal(t, []string{"Sales Manager"}, roles)
	assert.Equal(t, "ur", locale)
}
