package widget_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widgetmgr/consumer/widget"
)

func sampleCreateRequest() *widget.Request {
	return &widget.Request{
		Type:        widget.TypeCreate,
		RequestID:   "e80fab52-71a5-4a76-8c4d-11b66b83ca2a",
		WidgetID:    "8123f304-f23f-440b-a6d3-80e979fa4cd6",
		Owner:       "Mary Matthews",
		Label:       "JWJYY",
		Description: "A test widget",
		OtherAttributes: []widget.Attribute{
			{Name: "width-unit", Value: "cm"},
			{Name: "rating", Value: "2.580677"},
		},
	}
}

func TestParseRequest_Valid(t *testing.T) {
	t.Parallel()

	body := []byte(`{"type":"create","requestId":"r1","widgetId":"w1","owner":"Mary Matthews","label":"L","otherAttributes":[{"name":"color","value":"red"}]}`)

	req, err := widget.ParseRequest(body)
	require.NoError(t, err)

	assert.Equal(t, widget.TypeCreate, req.Type)
	assert.Equal(t, "r1", req.RequestID)
	assert.Equal(t, "w1", req.WidgetID)
	assert.Equal(t, "Mary Matthews", req.Owner)
	assert.Equal(t, []widget.Attribute{{Name: "color", Value: "red"}}, req.OtherAttributes)
}

func TestParseRequest_InvalidJSON(t *testing.T) {
	t.Parallel()

	req, err := widget.ParseRequest([]byte("this is not json"))
	require.Error(t, err)
	assert.Nil(t, req)

	var parseErr *widget.ParseError
	assert.True(t, errors.As(err, &parseErr), "expected a *widget.ParseError, got %T", err)
}

func TestParseRequest_UnknownTypePassesThrough(t *testing.T) {
	t.Parallel()

	// An unrecognised type is not a parse failure; the router rejects it.
	req, err := widget.ParseRequest([]byte(`{"type":"archive","requestId":"r1","widgetId":"w1"}`))
	require.NoError(t, err)
	assert.Equal(t, widget.RequestType("archive"), req.Type)
}

func TestOwnerSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		owner string
		want  string
	}{
		{"Mary Matthews", "mary-matthews"},
		{"John", "john"},
		{"", "unknown-owner"},
		{"A B C", "a-b-c"},
	}

	for _, tt := range tests {
		req := &widget.Request{Owner: tt.owner}
		assert.Equal(t, tt.want, req.OwnerSlug(), "owner %q", tt.owner)
	}
}

func TestWidget_DropsTypeAndRequestID(t *testing.T) {
	t.Parallel()

	req := sampleCreateRequest()
	w := req.Widget()

	assert.Equal(t, req.WidgetID, w.ID)
	assert.Equal(t, req.Owner, w.Owner)
	assert.Equal(t, req.OtherAttributes, w.OtherAttributes)

	body, err := json.Marshal(w)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.NotContains(t, fields, "type")
	assert.NotContains(t, fields, "requestId")
	assert.NotContains(t, fields, "widgetId")
	assert.Equal(t, req.WidgetID, fields["id"])
}

func TestWidget_MarshalsExpectedDocument(t *testing.T) {
	t.Parallel()

	req := &widget.Request{
		Type:      widget.TypeCreate,
		RequestID: "r1",
		WidgetID:  "w1",
		Owner:     "Mary Matthews",
		Label:     "L",
		OtherAttributes: []widget.Attribute{
			{Name: "color", Value: "red"},
		},
	}

	body, err := json.Marshal(req.Widget())
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"id":"w1","owner":"Mary Matthews","label":"L","otherAttributes":[{"name":"color","value":"red"}]}`,
		string(body))
}

func TestFlattenedItem_PromotesAttributes(t *testing.T) {
	t.Parallel()

	req := sampleCreateRequest()
	item := req.FlattenedItem()

	want := map[string]string{
		"id":          req.WidgetID,
		"owner":       "Mary Matthews",
		"label":       "JWJYY",
		"description": "A test widget",
		"width-unit":  "cm",
		"rating":      "2.580677",
	}
	assert.Equal(t, want, item)
}

func TestFlattenedItem_DropsEmptyValues(t *testing.T) {
	t.Parallel()

	req := &widget.Request{
		Type:     widget.TypeCreate,
		WidgetID: "w1",
		OtherAttributes: []widget.Attribute{
			{Name: "color", Value: "red"},
			{Name: "finish", Value: ""},
			{Name: "", Value: "orphan"},
		},
	}

	item := req.FlattenedItem()

	assert.Equal(t, map[string]string{"id": "w1", "color": "red"}, item)

	for name, value := range item {
		assert.NotEmpty(t, value, "attribute %q must not have an empty value", name)
	}
}

func TestFlattenedItem_LaterAttributesWin(t *testing.T) {
	t.Parallel()

	req := &widget.Request{
		Type:     widget.TypeCreate,
		WidgetID: "w1",
		OtherAttributes: []widget.Attribute{
			{Name: "color", Value: "red"},
			{Name: "color", Value: "blue"},
		},
	}

	assert.Equal(t, "blue", req.FlattenedItem()["color"])
}

func TestTransformsAreDeterministic(t *testing.T) {
	t.Parallel()

	req := sampleCreateRequest()

	assert.Equal(t, req.Widget(), req.Widget())
	assert.Equal(t, req.FlattenedItem(), req.FlattenedItem())
}
