package domain

import (
	"fmt"
	"time"
)

// HostingTier determines how a client's data is hosted.
type HostingTier string

const (
	// HostingTierShared places the client in the pooled database; every query
	// must carry a client_id predicate.
	HostingTierShared HostingTier = "shared"
	// HostingTierDedicated gives the client its own database; queries are not
	// rewritten.
	HostingTierDedicated HostingTier = "dedicated"
)

// Client represents a tenant organization.
type Client struct {
	ID          string
	Slug        string
	Name        string
	Tier        HostingTier
	DatabaseURL string // only set for dedicated tier
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewClient creates a new Client instance on the shared tier.
func NewClient(id, slug, name string, now time.Time) *Client {
	return &Client{
		ID:        id,
		Slug:      slug,
		Name:      name,
		Tier:      HostingTierShared,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateClient validates a Client instance
func ValidateClient(c *Client) error {
	if c == nil {
		return fmt.Errorf("client cannot be nil")
	}
	if c.ID == "" {
		return fmt.Errorf("client ID is required")
	}
	if c.Slug == "" {
		return fmt.Errorf("client Slug is required")
	}
	if c.Name == "" {
		return fmt.Errorf("client Name is required")
	}
	if !isValidHostingTier(c.Tier) {
		return fmt.Errorf("client Tier is invalid: %s", c.Tier)
	}
	if c.Tier == HostingTierDedicated && c.DatabaseURL == "" {
		return fmt.Errorf("dedicated client requires a DatabaseURL")
	}
	return nil
}

func isValidHostingTier(t HostingTier) bool {
	switch t {
	case HostingTierShared, HostingTierDedicated:
		return true
	}
	return false
}
