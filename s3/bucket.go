package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/widgetmgr/consumer/widget"
)

// widgetContentType is the content type set on stored widget documents.
const widgetContentType = "application/json"

// Bucket stores widgets as JSON documents in an S3 bucket, one object per
// widget, keyed by owner slug and widget ID. It implements the consumer's
// Sink contract.
//
// Use [NewBucket] to create a Bucket and [Bucket.Connect] to initialize the
// underlying S3 client before use.
type Bucket struct {
	client API
	bucket string
	awsCfg *aws.Config
	opts   *Options
	logger *slog.Logger
}

// NewBucket creates a Bucket that stores widgets in the named bucket under
// the configured key prefix (default "widgets"). Call [Bucket.Connect] on
// the returned Bucket before use.
func NewBucket(awsCfg *aws.Config, bucket string, logger *slog.Logger, opts ...Option) *Bucket {
	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Bucket{
		bucket: bucket,
		awsCfg: awsCfg,
		opts:   options,
		logger: logger.With("backend", "s3", "widget_bucket", bucket),
	}
}

// Connect initializes the S3 client from the AWS config provided to
// [NewBucket]. It must complete before the Bucket is used.
func (b *Bucket) Connect() error {
	if b.bucket == "" {
		return errors.New("widget bucket name cannot be empty")
	}

	if err := b.opts.validate(); err != nil {
		return fmt.Errorf("invalid S3 options: %w", err)
	}

	if b.opts.api != nil {
		b.client = b.opts.api
	} else {
		b.client = s3.NewFromConfig(*b.awsCfg)
	}

	return nil
}

// Create derives the document-shaped widget from req and writes it at
// <prefix>/<owner-slug>/<widget-id>. The write is unconditional: an existing
// widget with the same key is overwritten, last write wins.
func (b *Bucket) Create(ctx context.Context, req *widget.Request) error {
	if req.WidgetID == "" {
		return errors.New("widget ID cannot be empty")
	}

	body, err := json.Marshal(req.Widget())
	if err != nil {
		return fmt.Errorf("failed to marshal widget %s: %w", req.WidgetID, err)
	}

	key := b.widgetKey(req)

	input := &s3.PutObjectInput{
		Bucket:      &b.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String(widgetContentType),
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to write widget %s to bucket %s: %w", key, b.bucket, err)
	}

	b.logger.Info("widget stored",
		"widget_key", key,
		"widget_id", req.WidgetID,
		"request_id", req.RequestID,
	)

	return nil
}

// Delete removes the widget document for req if it exists. An absent widget
// is not an error: a warning is logged, no delete call is made, and the
// request still counts as handled. Deleting twice is therefore safe.
func (b *Bucket) Delete(ctx context.Context, req *widget.Request) error {
	if req.WidgetID == "" {
		return errors.New("widget ID cannot be empty")
	}

	key := b.widgetKey(req)

	headInput := &s3.HeadObjectInput{
		Bucket: &b.bucket,
		Key:    &key,
	}

	if _, err := b.client.HeadObject(ctx, headInput); err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			b.logger.Warn("widget not found for deletion, no action taken",
				"widget_key", key,
				"request_id", req.RequestID,
			)

			return nil
		}

		return fmt.Errorf("failed to check widget %s in bucket %s: %w", key, b.bucket, err)
	}

	deleteInput := &s3.DeleteObjectInput{
		Bucket: &b.bucket,
		Key:    &key,
	}

	if _, err := b.client.DeleteObject(ctx, deleteInput); err != nil {
		return fmt.Errorf("failed to delete widget %s from bucket %s: %w", key, b.bucket, err)
	}

	b.logger.Info("widget deleted",
		"widget_key", key,
		"request_id", req.RequestID,
	)

	return nil
}

// Update logs that update requests are not implemented and mutates nothing.
// This is an intentional stub, left as a future extension.
func (b *Bucket) Update(_ context.Context, req *widget.Request) error {
	b.logger.Warn("update requested but updates are not yet implemented",
		"widget_id", req.WidgetID,
		"request_id", req.RequestID,
	)

	return nil
}

func (b *Bucket) widgetKey(req *widget.Request) string {
	return b.opts.keyPrefix + "/" + req.OwnerSlug() + "/" + req.WidgetID
}
