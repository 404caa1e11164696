package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// DefaultBrandColor is applied when an organization is created without one.
const DefaultBrandColor = "#0066FF"

// OrganizationSettings holds per-organization presentation settings.
type OrganizationSettings struct {
	Timezone             string `json:"timezone"`
	PublicEmail          string `json:"public_email,omitempty"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// Organization is the root aggregate. Its domain slug is globally unique and
// is the only identifier exposed on the public surface.
type Organization struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Domain     string               `json:"domain"`
	Logo       string               `json:"logo,omitempty"`
	BrandColor string               `json:"brand_color"`
	Settings   OrganizationSettings `json:"settings"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

var domainFolder = cases.Fold()

// NormalizeDomain lowercases and trims an organization domain slug so that
// uniqueness checks and public lookups are case-insensitive.
func NormalizeDomain(domain string) string {
	return domainFolder.String(strings.TrimSpace(domain))
}
