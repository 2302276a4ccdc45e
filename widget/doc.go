// Package widget defines the widget change-request data model shared by the
// consumer and its storage backends.
//
// A [Request] is parsed from a JSON queue message and transformed into one of
// two persisted shapes: the nested document form ([Request.Widget]) used by
// object storage, or the flattened attribute map ([Request.FlattenedItem])
// used by table storage. Both transformations are pure functions; neither
// the request type nor the request ID ever appears in a persisted widget.
package widget
