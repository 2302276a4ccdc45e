package sqs

import (
	"errors"
)

// Option is a functional option for configuring a [Queue].
// Options are passed to [New] and applied before [Queue.Init] is called.
type Option func(*Options)

// Options holds the resolved configuration for a [Queue]. All fields are
// set to sensible defaults by [New]; use With* functions to override
// individual values.
type Options struct {
	visibilityTimeoutSeconds int32
	receiveWaitTimeSeconds   int32
	api                      API
}

func newOptions() *Options {
	return &Options{
		visibilityTimeoutSeconds: 30,
		receiveWaitTimeSeconds:   10,
	}
}

func (o *Options) validate() error {
	if o.visibilityTimeoutSeconds < 10 || o.visibilityTimeoutSeconds > 3600 {
		return errors.New("SQS message visibility timeout must be between 10 seconds and 1 hour")
	}

	if o.receiveWaitTimeSeconds < 0 || o.receiveWaitTimeSeconds > 20 {
		return errors.New("SQS receive wait time must be between 0 and 20 seconds")
	}

	return nil
}

// WithVisibilityTimeout sets the visibility timeout applied to each
// received message. A message that is not deleted before the timeout
// expires becomes visible in SQS again and is redelivered.
// Must be between 10 and 3600 seconds. Default: 30.
func WithVisibilityTimeout(seconds int32) Option {
	return func(o *Options) {
		o.visibilityTimeoutSeconds = seconds
	}
}

// WithReceiveWaitTime sets the long-poll wait duration for each
// ReceiveMessage API call. Longer values reduce empty responses and API
// costs. Must be between 0 and 20 seconds. Default: 10.
func WithReceiveWaitTime(seconds int32) Option {
	return func(o *Options) {
		o.receiveWaitTimeSeconds = seconds
	}
}

// WithAPI sets a custom [API] implementation. This option is intended for
// testing with mock or stub clients.
func WithAPI(api API) Option {
	return func(o *Options) {
		o.api = api
	}
}
