// internal/httpserver/players.go
//
// Anonymous player identity and per-player engines.
// Responsibilities:
//   - Mint an HS256 JWT on the first state-changing request and store it in
//     a cookie. Reads never mint.
//   - Accept the token from the cookie or an Authorization: Bearer header.
//   - Keep a bounded, least-recently-used cache of game.Engine per player.
//     Evicted engines are rebuilt from the player's storage on next use.
//
// A player with an invalid or expired token is treated as unknown: reads see
// defaults, writes get a fresh identity.
package httpserver

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/robalobadob/countle/internal/game"
)

const (
	playerCookieName = "countle_player"
	playerTokenTTL   = 365 * 24 * time.Hour
	tokenIssuer      = "countle"
)

// DefaultPlayerCapacity bounds the engine cache when no capacity is given.
const DefaultPlayerCapacity = 10000

// EngineFactory builds the engine for a player on first contact.
type EngineFactory func(ctx context.Context, playerID string) (*game.Engine, error)

type cachedEngine struct {
	id     string
	engine *game.Engine
}

// Players resolves requests to engines.
type Players struct {
	secret   []byte
	factory  EngineFactory
	now      func() time.Time
	capacity int
	builds   singleflight.Group

	mu      sync.Mutex
	engines map[string]*list.Element
	order   *list.List // front is most recently used
}

// NewPlayers signs tokens with secret and builds engines with factory,
// keeping at most capacity of them live.
func NewPlayers(secret string, capacity int, factory EngineFactory) *Players {
	if capacity <= 0 {
		capacity = DefaultPlayerCapacity
	}
	return &Players{
		secret:   []byte(secret),
		factory:  factory,
		now:      time.Now,
		capacity: capacity,
		engines:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Engine returns the cached engine for id, building it if needed. Builds run
// outside the cache lock and concurrent requests for one id share a build.
func (p *Players) Engine(ctx context.Context, id string) (*game.Engine, error) {
	if e, ok := p.cached(id); ok {
		return e, nil
	}
	v, err, _ := p.builds.Do(id, func() (any, error) {
		if e, ok := p.cached(id); ok {
			return e, nil
		}
		e, err := p.factory(ctx, id)
		if err != nil {
			return nil, err
		}
		p.add(id, e)
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("engine for %s: %w", id, err)
	}
	return v.(*game.Engine), nil
}

func (p *Players) cached(id string) (*game.Engine, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.engines[id]
	if !ok {
		return nil, false
	}
	p.order.MoveToFront(el)
	return el.Value.(*cachedEngine).engine, true
}

func (p *Players) add(id string, e *game.Engine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.engines[id] = p.order.PushFront(&cachedEngine{id: id, engine: e})
	for p.order.Len() > p.capacity {
		oldest := p.order.Back()
		p.order.Remove(oldest)
		delete(p.engines, oldest.Value.(*cachedEngine).id)
	}
}

// Forget drops the cached engine for id, if any.
func (p *Players) Forget(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el, ok := p.engines[id]; ok {
		p.order.Remove(el)
		delete(p.engines, id)
	}
}

// Len is the number of live engines.
func (p *Players) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.engines)
}

// sign issues a token whose subject is the player id.
func (p *Players) sign(id string) (string, time.Time, error) {
	now := p.now()
	exp := now.Add(playerTokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := t.SignedString(p.secret)
	return s, exp, err
}

// parse validates tok and returns the player id.
func (p *Players) parse(tok string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// bearerOrCookie extracts the player token from the request, if any.
func bearerOrCookie(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(playerCookieName); err == nil {
		return c.Value
	}
	return ""
}

// known returns the player id carried by a valid token, if any.
func (p *Players) known(r *http.Request) (string, bool) {
	tok := bearerOrCookie(r)
	if tok == "" {
		return "", false
	}
	id, err := p.parse(tok)
	if err != nil {
		log.Debug().Err(err).Msg("rejecting player token")
		return "", false
	}
	return id, true
}

// identify returns the request's player id, minting a new identity (and
// cookie) when the request carries no valid token.
func (p *Players) identify(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := p.known(r); ok {
		return id, nil
	}

	id := uuid.NewString()
	tok, exp, err := p.sign(id)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	w.Header().Set("X-Player-Token", tok)
	return id, nil
}

type (
	ctxEngineKey struct{}
	ctxPlayerKey struct{}
)

// withPlayer resolves the caller's engine and stores it in the request
// context. With mint set an unknown caller gets a new identity; otherwise
// the request proceeds with no engine and handlers answer with defaults.
func (p *Players) withPlayer(mint bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := p.known(r)
			if !ok && mint {
				var err error
				if id, err = p.identify(w, r); err != nil {
					log.Error().Err(err).Msg("sign player token")
					writeError(w, http.StatusInternalServerError, "identity_failed")
					return
				}
				ok = true
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			e, err := p.Engine(r.Context(), id)
			if err != nil {
				log.Error().Err(err).Str("player", id).Msg("create engine")
				writeError(w, http.StatusInternalServerError, "engine_failed")
				return
			}
			ctx := context.WithValue(r.Context(), ctxPlayerKey{}, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxEngineKey{}, e)))
		})
	}
}

// engineFrom returns the caller's engine, or nil for an unknown caller on a
// read-only route.
func engineFrom(ctx context.Context) *game.Engine {
	e, _ := ctx.Value(ctxEngineKey{}).(*game.Engine)
	return e
}

func playerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxPlayerKey{}).(string)
	return id
}
