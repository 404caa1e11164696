// Package realtime implements best-effort fanout of state changes to
// websocket subscribers. Delivery is at-most-once and fire-and-forget:
// the database write that triggered an event is the source of truth, never
// the notification.
package realtime

// Channel kinds. Organization channels carry private dashboard traffic keyed
// by organization id; public channels carry status-page traffic keyed by
// organization domain. The two namespaces never overlap.
const (
	KindOrganization = "organization"
	KindPublic       = "public"
)

// Audience addresses one fanout channel.
type Audience struct {
	Kind string
	Key  string
}

// Organization returns the private audience for an organization.
func Organization(orgID string) Audience {
	return Audience{Kind: KindOrganization, Key: orgID}
}

// Public returns the public audience for an organization domain.
func Public(domain string) Audience {
	return Audience{Kind: KindPublic, Key: domain}
}

func (a Audience) String() string {
	return a.Kind + ":" + a.Key
}

// Event names carried in fanout messages.
const (
	EventIncidentCreated = "incident-created"
	EventIncidentUpdated = "incident-updated"
	EventIncidentUpdate  = "incident-update"
	EventIncidentDeleted = "incident-deleted"
	EventServiceCreated  = "service-created"
	EventServiceUpdated  = "service-updated"
	EventServiceDeleted  = "service-deleted"
	EventStatusUpdate    = "status-update"
)

// Message is the wire format delivered to subscribers.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Publisher pushes an event to every subscriber of an audience. Failures are
// logged and swallowed; callers must never depend on delivery.
type Publisher interface {
	Publish(audience Audience, event string, payload interface{})
}
