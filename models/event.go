package models

// EventKind selects which analytics call the storefront snippet makes.
type EventKind string

const (
	KindPageView EventKind = "page_view"
	KindTrack    EventKind = "track"
)

// EventName identifies a deferred event. It doubles as the emit tag of the
// track event built from it.
type EventName string

const (
	EventAddedToCart       EventName = "added_to_cart"
	EventRemovedFromCart   EventName = "removed_from_cart"
	EventCompletedPurchase EventName = "completed_purchase"
)

// NormalizedEvent is the shaped analytics event handed to the pipeline.
type NormalizedEvent struct {
	Kind       EventKind      `json:"kind"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	EmitTag    string         `json:"emit_tag,omitempty"`
}

// IsZero reports whether the event carries nothing, which is how an
// unset default track event is represented.
func (e NormalizedEvent) IsZero() bool {
	return e.Kind == "" && e.Name == "" && len(e.Properties) == 0 && e.EmitTag == ""
}
