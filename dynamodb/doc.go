// Package dynamodb provides the DynamoDB-backed widget storage for the
// widget consumer.
//
// Widgets are stored one item per widget in a table with a simple primary
// key on the "id" attribute; uniqueness is global on the widget ID. Items
// use the flattened widget shape: every otherAttributes entry is promoted to
// a top-level attribute, and empty-string values are dropped because
// DynamoDB cannot store them as meaningful string attributes.
//
// Create a [Table] with [New], call [Table.Connect] to initialize the
// underlying DynamoDB client, and [Table.Init] to validate the table schema.
// Supply [WithAPI] to inject a custom or mock client implementation.
package dynamodb
