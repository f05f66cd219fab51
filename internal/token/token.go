// Package token is the shipped level-derivation collaborator: HMAC-signed
// bearer tokens carrying an identity and an access level. The dispatch core
// only knows the access.Deriver interface; any other credential scheme can
// replace this package without touching the gate.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"wsgate/internal/access"
)

// Claims is the verified content of a token.
type Claims struct {
	Identity string
	Level    access.Level
}

// Verifier signs and verifies level tokens with a shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign produces "identity:level:nonce.signature". The nonce keeps equal
// claims from producing equal tokens.
func (v *Verifier) Sign(identity string, level access.Level) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("token nonce: %w", err)
	}
	payload := fmt.Sprintf("%s:%d:%s", identity, int(level), hex.EncodeToString(nonce))
	return payload + "." + v.signPayload(payload), nil
}

// Verify checks the signature and parses the claims. It never reports why a
// token failed; callers get a yes or a no.
func (v *Verifier) Verify(tok string) (Claims, bool) {
	dot := strings.LastIndex(tok, ".")
	if dot <= 0 || dot == len(tok)-1 {
		return Claims{}, false
	}
	payload, signature := tok[:dot], tok[dot+1:]
	expected := v.signPayload(payload)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return Claims{}, false
	}

	// identity may itself contain ':'; level and nonce are the last two parts.
	parts := strings.Split(payload, ":")
	if len(parts) < 3 {
		return Claims{}, false
	}
	levelRaw := parts[len(parts)-2]
	identity := strings.Join(parts[:len(parts)-2], ":")
	levelInt, err := strconv.Atoi(levelRaw)
	if err != nil {
		return Claims{}, false
	}
	return Claims{Identity: identity, Level: access.Level(levelInt)}, true
}

// ClaimsFor extracts and verifies the token carried by r.
func (v *Verifier) ClaimsFor(r *http.Request) (Claims, bool) {
	tok := TokenFromRequest(r)
	if tok == "" {
		return Claims{}, false
	}
	return v.Verify(tok)
}

// LevelFor implements access.Deriver.
func (v *Verifier) LevelFor(r *http.Request) (access.Level, bool) {
	claims, ok := v.ClaimsFor(r)
	if !ok {
		return 0, false
	}
	return claims.Level, true
}

// IdentityFor suits dispatch.WithIdentity.
func (v *Verifier) IdentityFor(r *http.Request) (string, bool) {
	claims, ok := v.ClaimsFor(r)
	if !ok {
		return "", false
	}
	return claims.Identity, true
}

// TokenFromRequest reads the bearer token from the Authorization header,
// falling back to the access_token query parameter for socket clients that
// cannot set headers on the upgrade request.
func TokenFromRequest(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.URL.Query().Get("access_token")
}

func (v *Verifier) signPayload(payload string) string {
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
