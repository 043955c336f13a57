// internal/httpserver/player.go
//
// Player identity.
// Every visitor carries a signed cookie holding a random player id; the id
// keys their game session. Missing, expired or forged cookies are replaced
// with a fresh identity.

package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"
)

// playerCookieTTL is how long a browser keeps its player identity.
const playerCookieTTL = 30 * 24 * time.Hour

// ctxPlayerKey is the context key type for the player id.
type ctxPlayerKey struct{}

// withPlayer resolves the player id from the signed cookie, minting a new
// identity when the cookie is missing, expired or forged. It never rejects.
func (s *Server) withPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.playerFromCookie(r)
		if id == "" {
			id = genID()
			tok, exp, err := s.signPlayer(id)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("sign player cookie")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign_failed"})
				return
			}
			s.setPlayerCookie(w, tok, exp)
		}
		ctx := context.WithValue(r.Context(), ctxPlayerKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// playerID returns the id installed by withPlayer.
func playerID(r *http.Request) string {
	id, _ := r.Context().Value(ctxPlayerKey{}).(string)
	return id
}

// playerFromCookie validates the cookie token and returns its subject.
func (s *Server) playerFromCookie(r *http.Request) string {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return ""
	}
	return claims.Subject
}

// signPlayer creates an HS256 JWT whose subject is the player id.
func (s *Server) signPlayer(id string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(playerCookieTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// setPlayerCookie writes the player token cookie with appropriate security attributes.
func (s *Server) setPlayerCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
