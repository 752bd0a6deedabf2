package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test_secret")

func TestIssueAndValidate(t *testing.T) {
	svc := New(testSecret, 2*time.Hour)
	userID := uuid.New()

	raw, err := svc.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	got, err := svc.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestValidateExpired(t *testing.T) {
	svc := New(testSecret, -time.Minute)

	raw, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongSecret(t *testing.T) {
	svc := New(testSecret, time.Hour)
	raw, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	other := New([]byte("other_secret"), time.Hour)
	_, err = other.Validate(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbage(t *testing.T) {
	svc := New(testSecret, time.Hour)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Validate(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestValidateTampered(t *testing.T) {
	svc := New(testSecret, time.Hour)
	raw, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = svc.Validate(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateMissingSubject(t *testing.T) {
	svc := New(testSecret, time.Hour)

	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateNonUUIDSubject(t *testing.T) {
	svc := New(testSecret, time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongAlgorithm(t *testing.T) {
	svc := New(testSecret, time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}
