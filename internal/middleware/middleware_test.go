package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"
	"heriken-shop/internal/testutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "heriken_sid"

func newSessionConfig(t *testing.T) SessionConfig {
	_, rdb := testutil.NewRedis(t)
	return SessionConfig{
		Store:      repository.NewSessionStore(rdb, time.Hour),
		Secret:     "test-secret",
		CookieName: testCookie,
		TTL:        time.Hour,
	}
}

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, *model.Session, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *model.Session
	err := mw(func(c echo.Context) error {
		seen = SessionFrom(c)
		return c.NoContent(http.StatusNoContent)
	})(c)
	return rec, seen, err
}

func TestSessionIssuesCookie(t *testing.T) {
	cfg := newSessionConfig(t)
	rec, session, err := run(t, Session(cfg), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.ID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	sid, err := parseSessionToken([]byte(cfg.Secret), cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, session.ID, sid)
}

func TestSessionReusesValidCookie(t *testing.T) {
	cfg := newSessionConfig(t)
	require.NoError(t, cfg.Store.Save(context.Background(), &model.Session{ID: "known", UserID: 4, Role: model.RoleUser}))

	token, err := sessionToken([]byte(cfg.Secret), "known", time.Now(), time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})

	rec, session, err := run(t, Session(cfg), req)
	require.NoError(t, err)
	assert.Equal(t, "known", session.ID)
	assert.EqualValues(t, 4, session.UserID)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSessionRejectsForgedCookie(t *testing.T) {
	cfg := newSessionConfig(t)
	forged, err := sessionToken([]byte("other-secret"), "victim", time.Now(), time.Hour)
	require.NoError(t, err)
	expired, err := sessionToken([]byte(cfg.Secret), "old", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	for _, value := range []string{forged, expired, "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: value})

		rec, session, err := run(t, Session(cfg), req)
		require.NoError(t, err)
		assert.NotEqual(t, "victim", session.ID)
		assert.NotEqual(t, "old", session.ID)
		assert.Len(t, rec.Result().Cookies(), 1)
	}
}

func withSession(session *model.Session, mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			SetSession(c, session)
			return mw(next)(c)
		}
	}
}

func TestRequireUser(t *testing.T) {
	_, _, err := run(t, withSession(&model.Session{}, RequireUser()), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	rec, _, err := run(t, withSession(&model.Session{UserID: 1}, RequireUser()), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name        string
		session     *model.Session
		requireRole bool
		wantErr     error
	}{
		{"anonymous", &model.Session{}, true, model.ErrUnauthorized},
		{"customer", &model.Session{UserID: 1, Role: model.RoleUser}, true, model.ErrForbidden},
		{"admin", &model.Session{UserID: 1, Role: model.RoleAdmin}, true, nil},
		{"super admin", &model.Session{UserID: 1, Role: model.RoleSuperAdmin}, true, nil},
		{"gate disabled", &model.Session{}, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, withSession(tt.session, RequireAdmin(tt.requireRole)), httptest.NewRequest(http.MethodGet, "/", nil))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRotateSessionMovesSessionToNewCookie(t *testing.T) {
	cfg := newSessionConfig(t)
	ctx := context.Background()
	require.NoError(t, cfg.Store.Save(ctx, &model.Session{ID: "planted", UserID: 7, Role: model.RoleUser}))

	token, err := sessionToken([]byte(cfg.Secret), "planted", time.Now(), time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var rotated *model.Session
	err = Session(cfg)(func(c echo.Context) error {
		var err error
		rotated, err = RotateSession(c)
		return err
	})(c)
	require.NoError(t, err)

	assert.NotEqual(t, "planted", rotated.ID)
	assert.EqualValues(t, 7, rotated.UserID)
	assert.Equal(t, rotated.ID, SessionFrom(c).ID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	sid, err := parseSessionToken([]byte(cfg.Secret), cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, rotated.ID, sid)

	old, err := cfg.Store.Get(ctx, "planted")
	require.NoError(t, err)
	assert.False(t, old.IsAuthenticated())
}

func TestRotateSessionWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := RotateSession(c)
	assert.Error(t, err)
}
