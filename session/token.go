package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidToken indicates a token that is malformed or badly signed.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrTokenExpired indicates a token past its expiry.
	ErrTokenExpired = errors.New("session token expired")
)

type payload struct {
	Exp int64  `json:"exp"`
	Sub string `json:"sub"`
	N   string `json:"n,omitempty"`
}

func signToken(secret []byte, p payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(b)
	return encoded + "." + sign(secret, encoded), nil
}

func sign(secret []byte, encoded string) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verifyToken(secret []byte, token string, now time.Time) (payload, error) {
	encoded, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || encoded == "" || sig == "" {
		return payload{}, fmt.Errorf("%w: format", ErrInvalidToken)
	}

	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return payload{}, fmt.Errorf("%w: signature", ErrInvalidToken)
	}
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(encoded))
	if !hmac.Equal(mac.Sum(nil), got) {
		return payload{}, fmt.Errorf("%w: signature", ErrInvalidToken)
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return payload{}, fmt.Errorf("%w: payload", ErrInvalidToken)
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return payload{}, fmt.Errorf("%w: payload", ErrInvalidToken)
	}
	if p.Exp == 0 || strings.TrimSpace(p.Sub) == "" {
		return payload{}, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	if now.Unix() > p.Exp {
		return payload{}, ErrTokenExpired
	}
	return p, nil
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
