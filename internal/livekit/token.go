package livekit

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL bounds how long a minted join token stays valid.
const DefaultTokenTTL = 6 * time.Hour

var (
	ErrMissingCredentials = errors.New("livekit api key and secret are required")
	ErrMissingIdentity    = errors.New("participant identity is required")
	ErrMissingRoom        = errors.New("room name is required")
)

// VideoGrant mirrors the grant block LiveKit expects inside its JWT.
type VideoGrant struct {
	RoomJoin     bool   `json:"roomJoin,omitempty"`
	RoomCreate   bool   `json:"roomCreate,omitempty"`
	Room         string `json:"room,omitempty"`
	CanPublish   *bool  `json:"canPublish,omitempty"`
	CanSubscribe *bool  `json:"canSubscribe,omitempty"`
	Agent        bool   `json:"agent,omitempty"`
}

type claims struct {
	jwt.RegisteredClaims
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
}

// TokenMinter signs LiveKit access tokens with the project's API secret.
type TokenMinter struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenMinter(apiKey, apiSecret string) *TokenMinter {
	return &TokenMinter{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		ttl:       DefaultTokenTTL,
		now:       time.Now,
	}
}

// MintJoinToken returns a signed token letting identity join room as a
// publishing participant.
func (m *TokenMinter) MintJoinToken(room, identity, displayName string) (string, error) {
	return m.mint(room, identity, displayName, VideoGrant{
		RoomJoin:     true,
		Room:         room,
		CanPublish:   boolPtr(true),
		CanSubscribe: boolPtr(true),
	})
}

// MintAgentToken returns a signed token for the subprocess agent worker. The
// agent flag marks the participant as hidden infrastructure to other clients.
func (m *TokenMinter) MintAgentToken(room, identity string) (string, error) {
	return m.mint(room, identity, identity, VideoGrant{
		RoomJoin:     true,
		Room:         room,
		CanPublish:   boolPtr(true),
		CanSubscribe: boolPtr(true),
		Agent:        true,
	})
}

// MintServerToken returns a short-lived token authorizing RoomService API
// calls.
func (m *TokenMinter) MintServerToken() (string, error) {
	if m.apiKey == "" || m.apiSecret == "" {
		return "", ErrMissingCredentials
	}
	now := m.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.apiKey,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
		Video: VideoGrant{RoomCreate: true},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(m.apiSecret))
}

func (m *TokenMinter) mint(room, identity, displayName string, grant VideoGrant) (string, error) {
	if m.apiKey == "" || m.apiSecret == "" {
		return "", ErrMissingCredentials
	}
	if identity == "" {
		return "", ErrMissingIdentity
	}
	if room == "" {
		return "", ErrMissingRoom
	}

	now := m.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.apiKey,
			Subject:   identity,
			ID:        identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Name:  displayName,
		Video: grant,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(m.apiSecret))
}

func boolPtr(b bool) *bool { return &b }
