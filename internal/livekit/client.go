package livekit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lhyphendixon/sidekick-forge/internal/resilience"
)

// Room is the subset of LiveKit room metadata the control plane cares about.
type Room struct {
	SID             string `json:"sid"`
	Name            string `json:"name"`
	EmptyTimeout    uint32 `json:"empty_timeout"`
	MaxParticipants uint32 `json:"max_participants"`
	NumParticipants uint32 `json:"num_participants"`
}

// Client talks to a LiveKit server's Twirp RoomService over HTTP. It covers
// the handful of RPCs the control plane needs; media itself never touches
// this process.
type Client struct {
	baseURL  string
	minter   *TokenMinter
	http     *http.Client
	breakers *resilience.Registry
}

func NewClient(serverURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL: httpBaseURL(serverURL),
		minter:  NewTokenMinter(apiKey, apiSecret),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBreakers routes every RoomService RPC through the named circuit breaker
// "livekit.rooms".
func (c *Client) WithBreakers(breakers *resilience.Registry) *Client {
	c.breakers = breakers
	return c
}

// Minter exposes the token minter so handlers can issue join tokens.
func (c *Client) Minter() *TokenMinter {
	return c.minter
}

// CreateRoom creates the room if it does not exist. LiveKit treats the call
// as idempotent for an existing name.
func (c *Client) CreateRoom(ctx context.Context, name string, emptyTimeout time.Duration) (*Room, error) {
	req := map[string]any{
		"name":          name,
		"empty_timeout": uint32(emptyTimeout / time.Second),
	}
	var room Room
	if err := c.call(ctx, "CreateRoom", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// DeleteRoom disconnects all participants and removes the room.
func (c *Client) DeleteRoom(ctx context.Context, name string) error {
	return c.call(ctx, "DeleteRoom", map[string]any{"room": name}, &struct{}{})
}

// ListRooms returns the currently active rooms.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var resp struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.call(ctx, "ListRooms", map[string]any{}, &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// RemoveParticipant kicks one participant from a room.
func (c *Client) RemoveParticipant(ctx context.Context, room, identity string) error {
	return c.call(ctx, "RemoveParticipant", map[string]any{"room": room, "identity": identity}, &struct{}{})
}

func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	if c.breakers != nil {
		return c.breakers.Execute(ctx, "livekit.rooms", func(ctx context.Context) error {
			return c.doCall(ctx, method, payload, out)
		})
	}
	return c.doCall(ctx, method, payload, out)
}

func (c *Client) doCall(ctx context.Context, method string, payload any, out any) error {
	token, err := c.minter.MintServerToken()
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := c.baseURL + "/twirp/livekit.RoomService/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("livekit %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("livekit %s returned status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// httpBaseURL maps the configured ws(s):// endpoint onto the http(s)://
// endpoint Twirp listens on.
func httpBaseURL(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "ws://"):
		return "http://" + strings.TrimPrefix(serverURL, "ws://")
	case strings.HasPrefix(serverURL, "wss://"):
		return "https://" + strings.TrimPrefix(serverURL, "wss://")
	default:
		return strings.TrimSuffix(serverURL, "/")
	}
}
