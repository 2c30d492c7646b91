package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/cartline/cartline-backend/pkg/auth"
	"github.com/cartline/cartline-backend/pkg/auth/session"
	"github.com/cartline/cartline-backend/pkg/config"
)

var sessionJWT = config.JWTConfig{Secret: "secret", Issuer: "cartline", ExpirationMinutes: 60}

type stubRotator struct {
	rotateErr error
	revoked   string
	userID    uuid.UUID
	oldAccess string
}

func (s *stubRotator) Rotate(ctx context.Context, userID uuid.UUID, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	s.userID = userID
	s.oldAccess = oldAccessID
	return "new-access", "new-refresh", nil
}

func (s *stubRotator) Revoke(ctx context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}

func expiredToken(t *testing.T, userID uuid.UUID, jti string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(sessionJWT, time.Now().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{UserID: userID, JTI: jti})
	require.NoError(t, err)
	return token
}

func TestAuthRefreshRotatesExpiredToken(t *testing.T) {
	userID := uuid.New()
	rotator := &stubRotator{}

	req := newJSONRequest(http.MethodPost, "/auth/refresh", `{"refreshToken":"old-refresh"}`)
	req.Header.Set("Authorization", "Bearer "+expiredToken(t, userID, "old-access"))
	rec, env := serveRequest(t, AuthRefresh(rotator, sessionJWT, nil), req, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, userID, rotator.userID)
	assert.Equal(t, "old-access", rotator.oldAccess)

	var data refreshResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "new-refresh", data.RefreshToken)
	claims, err := pkgAuth.ParseAccessToken(sessionJWT, data.Token)
	require.NoError(t, err)
	assert.Equal(t, "new-access", claims.ID)
}

func TestAuthRefreshRejectsBadRefreshToken(t *testing.T) {
	rotator := &stubRotator{rotateErr: session.ErrInvalidRefreshToken}

	req := newJSONRequest(http.MethodPost, "/auth/refresh", `{"refreshToken":"guess"}`)
	req.Header.Set("Authorization", "Bearer "+expiredToken(t, uuid.New(), "a"))
	rec, _ := serveRequest(t, AuthRefresh(rotator, sessionJWT, nil), req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = newJSONRequest(http.MethodPost, "/auth/refresh", `{"refreshToken":"guess"}`)
	rec, _ = serveRequest(t, AuthRefresh(&stubRotator{}, sessionJWT, nil), req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	rotator := &stubRotator{}

	req := newJSONRequest(http.MethodPost, "/auth/logout", "")
	req.Header.Set("Authorization", "Bearer "+expiredToken(t, uuid.New(), "jti-1"))
	rec, _ := serveRequest(t, AuthLogout(rotator, sessionJWT, nil), req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jti-1", rotator.revoked)
}

func newJSONRequest(method, target, body string) *http.Request {
	req, _ := http.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
