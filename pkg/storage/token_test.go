package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSigner(at time.Time) *DownloadSigner {
	s := NewDownloadSigner("secret", time.Hour)
	s.now = func() time.Time { return at }
	return s
}

func TestDownloadSignerRoundTrip(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := fixedSigner(issued)

	token, expiresAt, err := s.Sign(42, "courses/7/abc_syllabus.pdf")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), expiresAt)
	assert.NotContains(t, token, "syllabus")

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.MaterialID)
	assert.True(t, claims.Covers("courses/7/abc_syllabus.pdf"))
	assert.False(t, claims.Covers("courses/7/other.pdf"))
}

func TestDownloadSignerExpiry(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token, _, err := fixedSigner(issued).Sign(1, "a.pdf")
	require.NoError(t, err)

	_, err = fixedSigner(issued.Add(time.Hour)).Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDownloadSignerRejectsTampering(t *testing.T) {
	s := fixedSigner(time.Now())
	token, _, err := s.Sign(1, "a.pdf")
	require.NoError(t, err)
	forged, _, err := s.Sign(2, "a.pdf")
	require.NoError(t, err)

	payload, _, _ := strings.Cut(forged, ".")
	_, sig, _ := strings.Cut(token, ".")
	for _, bad := range []string{"", "nodot", payload + "." + sig, token + "x"} {
		_, err := s.Verify(bad)
		assert.ErrorIs(t, err, ErrTokenMalformed, bad)
	}

	other := NewDownloadSigner("another", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestDownloadSignerRequiresSecret(t *testing.T) {
	_, _, err := NewDownloadSigner("", 0).Sign(1, "a.pdf")
	require.Error(t, err)
}
