package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueVerify(t *testing.T) {
	svc := NewService([]byte("test-secret"), 24*time.Hour)

	tokenStr, err := svc.Issue("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	userID, err := svc.Verify(tokenStr)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
}

func TestVerifyExpired(t *testing.T) {
	svc := NewService([]byte("test-secret"), -time.Hour)

	tokenStr, err := svc.Issue("user-1")
	require.NoError(t, err)

	_, err = svc.Verify(tokenStr)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc := NewService([]byte("test-secret"), 24*time.Hour)

	tokenStr, err := svc.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	svc := NewService([]byte("test-secret"), 24*time.Hour)
	other := NewService([]byte("other-secret"), 24*time.Hour)

	tokenStr, err := svc.Issue("user-1")
	require.NoError(t, err)

	_, err = other.Verify(tokenStr)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewService([]byte("test-secret"), 24*time.Hour)

	_, err := svc.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
