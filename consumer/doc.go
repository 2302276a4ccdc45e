// Package consumer implements the widget change-request processing loop.
//
// # Overview
//
// A [Poller] repeatedly asks a [Source] for the oldest pending request
// message, parses it, routes it through a [Router] to the configured [Sink],
// and deletes the message on completion. Processing is strictly sequential:
// one message at a time, start to finish, with no overlap between fetch,
// process, and delete.
//
// # Failure policy
//
// Outcomes are classified and handled per message:
//
//   - A body that fails to parse is a poison message: it is deleted
//     unconditionally so it can never wedge the queue, and is not retried.
//   - An unknown request type is logged and the message is deleted; the
//     request counts as handled, just unsupported.
//   - A backend/service failure (an AWS API error from the source or sink)
//     leaves the message in place for retry and backs off briefly. Retries
//     give at-least-once semantics; duplicate side effects are possible.
//   - Any other processing error deletes the message anyway, trading
//     possible message loss for forward progress, and backs off briefly.
//
// # Concurrency
//
// The poller offers no coordination between consumer instances: two
// consumers polling the same queue can observe and process the same message
// before either deletes it. This is an accepted limitation of the
// polling-queue model.
package consumer
