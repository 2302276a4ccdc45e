package consumer

import (
	"errors"

	"github.com/aws/smithy-go"
)

// ErrUnknownType is returned by [Router.Dispatch] when a request carries a
// type with no registered handler. The poller treats the request as handled
// but unsupported: no backend mutation, message deleted.
var ErrUnknownType = errors.New("unknown request type")

// isBackendError reports whether err originated from the storage or queue
// collaborator (throttling, permissions, unavailability). Such failures are
// transient from the consumer's point of view: the message is retained and
// retried after a backoff.
func isBackendError(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr)
}
