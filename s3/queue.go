package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Queue reads widget change requests from an S3 bucket acting as a message
// queue. It implements the consumer's Source contract: NextKey returns the
// first listed object key, Fetch returns its body, and Delete acknowledges
// it by removing the object.
//
// Use [NewQueue] to create a Queue and [Queue.Connect] to initialize the
// underlying S3 client before use.
type Queue struct {
	client API
	bucket string
	awsCfg *aws.Config
	opts   *Options
	logger *slog.Logger
}

// NewQueue creates a Queue that polls the named bucket. The logger is
// enriched with backend and queue fields. Call [Queue.Connect] on the
// returned Queue before use.
func NewQueue(awsCfg *aws.Config, bucket string, logger *slog.Logger, opts ...Option) *Queue {
	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Queue{
		bucket: bucket,
		awsCfg: awsCfg,
		opts:   options,
		logger: logger.With("backend", "s3", "queue_bucket", bucket),
	}
}

// Connect initializes the S3 client from the AWS config provided to
// [NewQueue]. It must complete before the Queue is used.
func (q *Queue) Connect() error {
	if q.bucket == "" {
		return errors.New("queue bucket name cannot be empty")
	}

	if err := q.opts.validate(); err != nil {
		return fmt.Errorf("invalid S3 options: %w", err)
	}

	// Use injected S3 API if provided (useful for testing).
	if q.opts.api != nil {
		q.client = q.opts.api
	} else {
		q.client = s3.NewFromConfig(*q.awsCfg)
	}

	return nil
}

// NextKey returns the key of the first available message object, or
// ok=false when the bucket is empty. "First" is S3 list order (lexical),
// which producers arrange to be oldest-first.
func (q *Queue) NextKey(ctx context.Context) (string, bool, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  &q.bucket,
		MaxKeys: aws.Int32(1),
	}

	output, err := q.client.ListObjectsV2(ctx, input)
	if err != nil {
		return "", false, fmt.Errorf("failed to list queue bucket %s: %w", q.bucket, err)
	}

	if len(output.Contents) == 0 {
		return "", false, nil
	}

	return aws.ToString(output.Contents[0].Key), true, nil
}

// Fetch returns the raw body of the message object with the given key.
func (q *Queue) Fetch(ctx context.Context, key string) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: &q.bucket,
		Key:    &key,
	}

	output, err := q.client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s from queue bucket %s: %w", key, q.bucket, err)
	}
	defer output.Body.Close()

	body, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s body: %w", key, err)
	}

	return body, nil
}

// Delete removes the message object with the given key. Deleting an absent
// object is not an error in S3, so Delete is idempotent.
func (q *Queue) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: &q.bucket,
		Key:    &key,
	}

	if _, err := q.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("failed to delete message %s from queue bucket %s: %w", key, q.bucket, err)
	}

	q.logger.Debug("queue message deleted", "message_key", key)

	return nil
}
