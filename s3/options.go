package s3

import (
	"errors"
	"strings"
)

// Option is a functional option for configuring a [Queue] or [Bucket].
type Option func(*Options)

// Options holds the configuration shared by this package's clients. Use
// [Option] functions to customise the defaults.
type Options struct {
	api       API
	keyPrefix string
}

func newOptions() *Options {
	return &Options{
		keyPrefix: "widgets",
	}
}

func (o *Options) validate() error {
	if o.keyPrefix == "" {
		return errors.New("key prefix cannot be empty")
	}

	if strings.HasPrefix(o.keyPrefix, "/") || strings.HasSuffix(o.keyPrefix, "/") {
		return errors.New("key prefix cannot start or end with '/'")
	}

	return nil
}

// WithAPI sets a custom [API] implementation. This is useful when a custom
// S3 configuration is required, or for injecting mocks in tests.
func WithAPI(api API) Option {
	return func(o *Options) {
		o.api = api
	}
}

// WithKeyPrefix sets the key prefix under which [Bucket] stores widget
// documents. The default is "widgets". The prefix must be non-empty and
// must not start or end with a slash.
func WithKeyPrefix(prefix string) Option {
	return func(o *Options) {
		o.keyPrefix = prefix
	}
}
