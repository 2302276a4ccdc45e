package widget

import (
	"encoding/json"
	"strings"
)

// UnknownOwnerSlug is the owner slug used when a request carries no owner.
const UnknownOwnerSlug = "unknown-owner"

// RequestType identifies the operation a change request asks for.
type RequestType string

// Request types understood by the consumer. Any other value is rejected
// without mutating the backend.
const (
	TypeCreate RequestType = "create"
	TypeDelete RequestType = "delete"
	TypeUpdate RequestType = "update"
)

// Attribute is a single name/value pair from a request's otherAttributes
// list. Attributes are the extensibility mechanism for sparse or
// backend-specific widget fields.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Request is a widget change request as read from the queue. It exists only
// for the duration of one poll cycle and is never persisted itself.
type Request struct {
	Type            RequestType `json:"type"`
	RequestID       string      `json:"requestId"`
	WidgetID        string      `json:"widgetId"`
	Owner           string      `json:"owner,omitempty"`
	Label           string      `json:"label,omitempty"`
	Description     string      `json:"description,omitempty"`
	OtherAttributes []Attribute `json:"otherAttributes,omitempty"`
}

// Widget is the persisted document representation of a widget. Compared to
// the request it was derived from, type and requestId are stripped and
// widgetId is renamed to id; otherAttributes are kept nested and verbatim.
type Widget struct {
	ID              string      `json:"id"`
	Owner           string      `json:"owner,omitempty"`
	Label           string      `json:"label,omitempty"`
	Description     string      `json:"description,omitempty"`
	OtherAttributes []Attribute `json:"otherAttributes,omitempty"`
}

// ParseError reports a request body that is not valid JSON. The consumer
// treats such messages as poison: they are removed from the queue without
// retry.
type ParseError struct {
	err error
}

func (e *ParseError) Error() string {
	return "failed to parse widget request: " + e.err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// ParseRequest decodes a raw queue message body into a [Request]. A body
// that is not valid JSON yields a [*ParseError]; field-level validation
// (required IDs, known type) is left to the router and the sinks.
func ParseRequest(body []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &ParseError{err: err}
	}

	return &req, nil
}

// OwnerSlug returns the owner display name normalized for use as a key-path
// component: lowercased, with spaces replaced by hyphens. A request without
// an owner yields [UnknownOwnerSlug] rather than an error.
func (r *Request) OwnerSlug() string {
	if r.Owner == "" {
		return UnknownOwnerSlug
	}

	return strings.ReplaceAll(strings.ToLower(r.Owner), " ", "-")
}

// Widget derives the document-shaped widget from the request. The
// transformation is pure: identical requests yield identical widgets.
func (r *Request) Widget() Widget {
	return Widget{
		ID:              r.WidgetID,
		Owner:           r.Owner,
		Label:           r.Label,
		Description:     r.Description,
		OtherAttributes: r.OtherAttributes,
	}
}

// FlattenedItem derives the flattened widget representation used by table
// storage. Each otherAttributes entry is promoted to a top-level key; later
// entries win on name collisions. Entries with an empty value are dropped
// entirely, because the flattened target cannot represent empty strings as
// first-class values. The loss is irreversible and intentional.
func (r *Request) FlattenedItem() map[string]string {
	item := map[string]string{"id": r.WidgetID}

	if r.Owner != "" {
		item["owner"] = r.Owner
	}

	if r.Label != "" {
		item["label"] = r.Label
	}

	if r.Description != "" {
		item["description"] = r.Description
	}

	for _, attr := range r.OtherAttributes {
		if attr.Name == "" || attr.Value == "" {
			continue
		}

		item[attr.Name] = attr.Value
	}

	return item
}
