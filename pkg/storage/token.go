package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenMalformed = errors.New("download token malformed")
	ErrTokenExpired   = errors.New("download token expired")
)

// DownloadClaims is what a verified download token asserts.
type DownloadClaims struct {
	MaterialID int64
	ExpiresAt  time.Time
	objectTag  string
}

// Covers reports whether the token was issued for the given stored object.
func (c DownloadClaims) Covers(objectName string) bool {
	return hmac.Equal([]byte(c.objectTag), []byte(objectTag(objectName)))
}

// DownloadSigner issues short-lived HMAC-SHA256 tokens for material downloads.
// A token binds the material ID to its stored object so a re-upload invalidates old links.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDownloadSigner builds a signer. ttl <= 0 defaults to 30 minutes.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a URL-safe token for the material.
func (s *DownloadSigner) Sign(materialID int64, objectName string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("download signing secret missing")
	}
	if materialID <= 0 || objectName == "" {
		return "", time.Time{}, fmt.Errorf("cannot sign material %d", materialID)
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	payload := fmt.Sprintf("%d:%d:%s", materialID, expiresAt.Unix(), objectTag(objectName))
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(payload)) + "." + enc.EncodeToString(s.mac(payload)), expiresAt, nil
}

// Verify checks signature and expiry.
func (s *DownloadSigner) Verify(token string) (DownloadClaims, error) {
	enc := base64.RawURLEncoding
	rawPayload, rawSig, ok := strings.Cut(token, ".")
	if !ok {
		return DownloadClaims{}, ErrTokenMalformed
	}
	payload, err := enc.DecodeString(rawPayload)
	if err != nil {
		return DownloadClaims{}, ErrTokenMalformed
	}
	sig, err := enc.DecodeString(rawSig)
	if err != nil || !hmac.Equal(sig, s.mac(string(payload))) {
		return DownloadClaims{}, ErrTokenMalformed
	}

	parts := strings.SplitN(string(payload), ":", 3)
	if len(parts) != 3 {
		return DownloadClaims{}, ErrTokenMalformed
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return DownloadClaims{}, ErrTokenMalformed
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return DownloadClaims{}, ErrTokenMalformed
	}
	claims := DownloadClaims{MaterialID: id, ExpiresAt: time.Unix(exp, 0), objectTag: parts[2]}
	if !s.now().Before(claims.ExpiresAt) {
		return DownloadClaims{}, ErrTokenExpired
	}
	return claims, nil
}

func (s *DownloadSigner) mac(payload string) []byte {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(payload))
	return m.Sum(nil)
}

// objectTag is a short digest of the stored name so tokens never reveal storage paths.
func objectTag(objectName string) string {
	sum := sha256.Sum256([]byte(objectName))
	return hex.EncodeToString(sum[:8])
}
