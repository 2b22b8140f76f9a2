package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) authService() AuthService {
	rdb := redis.NewClient(&redis.Options{Addr: e.mr.Addr()})
	return NewAuthService(e.users, e.sessions, repository.NewOTPStore(rdb), repository.NewRateLimiter(rdb), e.notifier)
}

var otpExpr = regexp.MustCompile(`\d{6}`)

func lastOTP(t *testing.T, env *testEnv) string {
	t.Helper()
	msgs := env.sms.messages()
	require.NotEmpty(t, msgs)
	code := otpExpr.FindString(msgs[len(msgs)-1].Message)
	require.NotEmpty(t, code)
	return code
}

func TestSendOTPRateLimit(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.SendOTP(ctx, "01712345678"))
	}
	err := svc.SendOTP(ctx, "+880 1712-345678")
	assert.ErrorIs(t, err, model.ErrRateLimited)
	assert.Len(t, env.sms.messages(), 3)

	// another number has its own window
	require.NoError(t, svc.SendOTP(ctx, "01812345678"))

	env.mr.FastForward(5*time.Minute + time.Second)
	assert.NoError(t, svc.SendOTP(ctx, "01712345678"))
}

func TestSendOTPStoresCode(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.authService().SendOTP(context.Background(), "01712345678"))

	msgs := env.sms.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"8801712345678"}, msgs[0].Phones)

	stored, err := env.mr.Get("otp:8801712345678")
	require.NoError(t, err)
	assert.Equal(t, lastOTP(t, env), stored)
	assert.Equal(t, 5*time.Minute, env.mr.TTL("otp:8801712345678"))
}

func TestSendOTPInvalidPhone(t *testing.T) {
	env := newTestEnv(t)
	err := env.authService().SendOTP(context.Background(), "12345")
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Empty(t, env.sms.messages())
}

func TestVerifyOTP(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	ctx := context.Background()

	_, err := svc.VerifyOTP(ctx, "sid", "01712345678", "123456", "")
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, "OTP expired or not found", err.Error())

	require.NoError(t, svc.SendOTP(ctx, "01712345678"))
	code := lastOTP(t, env)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = svc.VerifyOTP(ctx, "sid", "01712345678", wrong, "")
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, "Invalid OTP", err.Error())

	user, err := svc.VerifyOTP(ctx, "sid", "01712345678", code, "Nusrat")
	require.NoError(t, err)
	assert.Equal(t, "Nusrat", user.Name)
	require.NotNil(t, user.Phone)
	assert.Equal(t, "8801712345678", *user.Phone)
	assert.NotNil(t, user.PhoneVerifiedAt)

	session, err := env.sessions.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, model.RoleUser, session.Role)

	// the code is single use
	_, err = svc.VerifyOTP(ctx, "sid", "01712345678", code, "")
	assert.ErrorIs(t, err, model.ErrValidation)

	// a second login finds the same user
	env.mr.FastForward(6 * time.Minute)
	require.NoError(t, svc.SendOTP(ctx, "01712345678"))
	again, err := svc.VerifyOTP(ctx, "sid2", "01712345678", lastOTP(t, env), "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, int64(1), env.countRows(t, &model.User{}))
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	ctx := context.Background()

	bad := []RegisterInput{
		{Email: "a@b.com", Password: "secret1", ConfirmPassword: "secret1"},
		{Name: "A", Email: "not-an-email", Password: "secret1", ConfirmPassword: "secret1"},
		{Name: "A", Email: "a@b.com", Password: "short", ConfirmPassword: "short"},
		{Name: "A", Email: "a@b.com", Password: "secret1", ConfirmPassword: "secret2"},
	}
	for _, in := range bad {
		_, err := svc.Register(ctx, "sid", in)
		assert.ErrorIs(t, err, model.ErrValidation, "%+v", in)
	}

	user, err := svc.Register(ctx, "sid", RegisterInput{Name: "Ayesha", Email: "Ayesha@Example.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, user.Email)
	assert.Equal(t, "ayesha@example.com", *user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = svc.Register(ctx, "sid", RegisterInput{Name: "B", Email: "ayesha@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	assert.ErrorIs(t, err, model.ErrEmailTaken)

	_, err = svc.Login(ctx, "sid2", "ayesha@example.com", "wrong-password")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "sid2", "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	logged, err := svc.Login(ctx, "sid2", "AYESHA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	session, err := env.sessions.Get(ctx, "sid2")
	require.NoError(t, err)
	assert.True(t, session.IsAuthenticated())

	require.NoError(t, svc.Logout(ctx, "sid2"))
	session, err = env.sessions.Get(ctx, "sid2")
	require.NoError(t, err)
	assert.False(t, session.IsAuthenticated())
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	user := env.addUser(t, model.RoleUser)
	ctx := context.Background()

	updated, err := svc.UpdateProfile(ctx, user.ID, "Karim Uddin", "01912345678")
	require.NoError(t, err)
	assert.Equal(t, "Karim Uddin", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "8801912345678", *updated.Phone)

	_, err = svc.UpdateProfile(ctx, user.ID, "", "")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.UpdateProfile(ctx, user.ID, "Karim", "999")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Profile(ctx, 9999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestVerifyOTPBurnsCodeAfterTooManyMisses(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	ctx := context.Background()

	require.NoError(t, svc.SendOTP(ctx, "01712345678"))
	code := lastOTP(t, env)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < otpMaxAttempts-1; i++ {
		_, err := svc.VerifyOTP(ctx, "sid", "01712345678", wrong, "")
		require.ErrorIs(t, err, model.ErrValidation, "attempt %d", i+1)
	}
	_, err := svc.VerifyOTP(ctx, "sid", "01712345678", wrong, "")
	require.ErrorIs(t, err, model.ErrRateLimited)
	assert.False(t, env.mr.Exists("otp:8801712345678"))

	// the right code no longer works either
	_, err = svc.VerifyOTP(ctx, "sid", "01712345678", code, "")
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, "OTP expired or not found", err.Error())

	// a fresh code starts a fresh count
	require.NoError(t, svc.SendOTP(ctx, "01712345678"))
	code = lastOTP(t, env)
	if code == wrong {
		wrong = "222222"
	}
	_, err = svc.VerifyOTP(ctx, "sid", "01712345678", wrong, "")
	require.ErrorIs(t, err, model.ErrValidation)
	user, err := svc.VerifyOTP(ctx, "sid", "01712345678", code, "")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.False(t, env.mr.Exists("otp_attempts:8801712345678"))
}
