package middleware

import (
	"errors"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	sessionKey = "session"
	userIDKey  = "user_id"
	issuerKey  = "session_issuer"

	devSessionSecret = "heriken-dev-session-secret"
)

type SessionConfig struct {
	Store      repository.SessionStore
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// sessionToken signs the session id. The session body itself lives in
// redis, the cookie only proves which id the browser owns.
func sessionToken(secret []byte, sid string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseSessionToken(secret []byte, raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("session token without subject")
	}
	return claims.Subject, nil
}

// issuer hands out session ids and the cookies that carry them.
type issuer struct {
	cfg    SessionConfig
	secret []byte
}

func (i *issuer) issue() (string, *http.Cookie, error) {
	sid := uuid.NewString()
	token, err := sessionToken(i.secret, sid, time.Now(), i.cfg.TTL)
	if err != nil {
		return "", nil, err
	}
	return sid, &http.Cookie{
		Name:     i.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(i.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   i.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Session resolves the signed session cookie, issuing a fresh session id
// when it is missing or invalid, and loads the session into the context.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = []byte(devSessionSecret)
	}
	iss := &issuer{cfg: cfg, secret: secret}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var sid string
			if cookie, err := c.Cookie(cfg.CookieName); err == nil {
				sid, err = parseSessionToken(secret, cookie.Value)
				if err != nil {
					log.WithError(err).Debug("Discarding invalid session cookie")
				}
			}

			if sid == "" {
				var cookie *http.Cookie
				var err error
				if sid, cookie, err = iss.issue(); err != nil {
					return err
				}
				c.SetCookie(cookie)
			}

			session, err := cfg.Store.Get(c.Request().Context(), sid)
			if err != nil {
				return err
			}
			c.Set(issuerKey, iss)
			SetSession(c, session)

			return next(c)
		}
	}
}

// RotateSession moves the request's session to a fresh id and sends the new
// cookie. Call it whenever a user gets bound to the session so a planted
// cookie never ends up logged in.
func RotateSession(c echo.Context) (*model.Session, error) {
	iss, ok := c.Get(issuerKey).(*issuer)
	if !ok {
		return nil, errors.New("session middleware not installed")
	}

	newID, cookie, err := iss.issue()
	if err != nil {
		return nil, err
	}
	session, err := iss.cfg.Store.Rename(c.Request().Context(), SessionFrom(c).ID, newID)
	if err != nil {
		return nil, err
	}

	c.SetCookie(cookie)
	SetSession(c, session)
	return session, nil
}

// SetSession replaces the request's session, e.g. after a service returned
// the updated copy.
func SetSession(c echo.Context, session *model.Session) {
	c.Set(sessionKey, session)
	c.Set(userIDKey, session.UserID)
}

// SessionFrom returns the request's session. Without the Session middleware
// it is an empty anonymous session.
func SessionFrom(c echo.Context) *model.Session {
	if s, ok := c.Get(sessionKey).(*model.Session); ok {
		return s
	}
	return &model.Session{}
}

func UserID(c echo.Context) uint {
	id, _ := c.Get(userIDKey).(uint)
	return id
}
