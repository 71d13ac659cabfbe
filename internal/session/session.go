package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"guysocial/internal/common"
	"guysocial/internal/config"
)

// CurrentUser is the authenticated viewer as the identity provider
// reports it.
type CurrentUser struct {
	ID     uint64
	Handle string
}

// Claims represents the data stored in a platform session token.
type Claims struct {
	UserID uint64 `json:"user_id"`
	Handle string `json:"handle"`
	jwt.RegisteredClaims
}

// EventKind marks a session change.
type EventKind int

const (
	SignedIn EventKind = iota
	SignedOut
)

type Event struct {
	Kind EventKind
	User *CurrentUser
}

// Provider verifies platform session tokens and publishes session
// changes to listeners. Identity itself is external; this is only the
// client-side boundary.
type Provider struct {
	secret []byte

	mu        sync.RWMutex
	current   *CurrentUser
	listeners []chan Event
}

func NewProvider(cfg *config.Config) *Provider {
	return &Provider{secret: []byte(cfg.Session.JWTSecret)}
}

// SignIn validates the token and installs the session.
func (p *Provider) SignIn(token string) (*CurrentUser, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, common.NewAuthorizationError("invalid session token")
	}

	user := &CurrentUser{ID: claims.UserID, Handle: claims.Handle}

	p.mu.Lock()
	p.current = user
	p.mu.Unlock()

	p.publish(Event{Kind: SignedIn, User: user})
	return user, nil
}

func (p *Provider) SignOut() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	p.publish(Event{Kind: SignedOut})
}

// CurrentUser returns the signed-in viewer, or an authorization error
// when there is no session.
func (p *Provider) CurrentUser() (*CurrentUser, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil, common.NewAuthorizationError("not authenticated")
	}
	return p.current, nil
}

// Changes returns a stream of session-change events and a cancel
// function that removes the listener again. Callers that outlive their
// interest in the stream must cancel, or the listener leaks.
func (p *Provider) Changes() (<-chan Event, func()) {
	ch := make(chan Event, 4)
	p.mu.Lock()
	p.listeners = append(p.listeners, ch)
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, l := range p.listeners {
			if l == ch {
				p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
				return
			}
		}
	}
	return ch, cancel
}

func (p *Provider) publish(event Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ch := range p.listeners {
		select {
		case ch <- event:
		default:
			// Listener is not draining; drop rather than block.
		}
	}
}

func (p *Provider) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// IssueToken mints a session token. Used by tests and local tooling;
// production tokens come from the identity provider.
func (p *Provider) IssueToken(userID uint64, handle string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Handle: handle,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "guysocial",
			Subject:   "user-session",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}
