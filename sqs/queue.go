package sqs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// API is the subset of the AWS SQS client used by this package. The real
// client satisfies it; tests inject mocks via [WithAPI].
type API interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Queue reads widget change requests from an SQS queue. It implements the
// consumer's Source contract: NextKey receives a message and returns its
// receipt handle as the key, Fetch returns the body received with that
// handle, and Delete acknowledges the message.
//
// At most one message is in flight at a time; a retained (never deleted)
// message is dropped from the in-flight map on the next receive and comes
// back from SQS with a fresh receipt handle once its visibility timeout
// expires.
type Queue struct {
	client      API
	queueName   string
	queueURL    string
	awsCfg      *aws.Config
	opts        *Options
	logger      *slog.Logger
	pending     map[string][]byte
	initialized bool
}

// New creates a Queue configured to consume from the named SQS queue.
// Functional options may be passed to override defaults (see With*
// functions). New does not connect to AWS; call [Queue.Init] to resolve the
// queue URL.
func New(awsCfg *aws.Config, queueName string, logger *slog.Logger, opts ...Option) *Queue {
	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Queue{
		queueName: queueName,
		awsCfg:    awsCfg,
		opts:      options,
		logger:    logger.With("backend", "sqs", "queue_name", queueName),
		pending:   make(map[string][]byte),
	}
}

// Init initializes the Queue: validates options and resolves the queue URL
// via GetQueueUrl. It returns the receiver so that initialization can be
// chained with [New]:
//
//	queue, err := sqs.New(&awsCfg, "widget-requests", logger).Init(ctx)
//
// Init is idempotent; subsequent calls on an already-initialized Queue are
// no-ops. It must be called once during application startup.
func (q *Queue) Init(ctx context.Context) (*Queue, error) {
	if q.initialized {
		return q, nil
	}

	if q.queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	if err := q.opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid SQS options: %w", err)
	}

	// Use injected client if provided (for testing), otherwise create real client
	if q.opts.api != nil {
		q.client = q.opts.api
	} else {
		q.client = sqs.NewFromConfig(*q.awsCfg)
	}

	resp, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(q.queueName)})
	if err != nil {
		return nil, fmt.Errorf("failed to get SQS queue URL for %s: %w", q.queueName, err)
	}

	q.queueURL = aws.ToString(resp.QueueUrl)
	q.initialized = true

	return q, nil
}

// NextKey receives the next available message and returns its receipt
// handle, or ok=false when the queue is empty. The receive long-polls for
// the configured wait time, so an empty queue blocks here rather than in
// the poller's idle sleep.
func (q *Queue) NextKey(ctx context.Context) (string, bool, error) {
	if !q.initialized {
		return "", false, errors.New("SQS queue not initialized")
	}

	input := &sqs.ReceiveMessageInput{
		QueueUrl:            &q.queueURL,
		MaxNumberOfMessages: 1,
		VisibilityTimeout:   q.opts.visibilityTimeoutSeconds,
		WaitTimeSeconds:     q.opts.receiveWaitTimeSeconds,
	}

	output, err := q.client.ReceiveMessage(ctx, input)
	if err != nil {
		return "", false, fmt.Errorf("failed to receive SQS message: %w", err)
	}

	if len(output.Messages) == 0 {
		return "", false, nil
	}

	msg := output.Messages[0]
	handle := aws.ToString(msg.ReceiptHandle)

	// Only one message is in flight at a time; anything still pending was
	// retained for retry and will be redelivered with a new handle.
	clear(q.pending)
	q.pending[handle] = []byte(aws.ToString(msg.Body))

	q.logger.Debug("SQS message received", "message_id", aws.ToString(msg.MessageId))

	return handle, true, nil
}

// Fetch returns the body of the message received with the given receipt
// handle.
func (q *Queue) Fetch(_ context.Context, key string) ([]byte, error) {
	body, ok := q.pending[key]
	if !ok {
		return nil, fmt.Errorf("no in-flight SQS message for key %q", key)
	}

	return body, nil
}

// Delete acknowledges the message with the given receipt handle, removing
// it from the queue.
func (q *Queue) Delete(ctx context.Context, key string) error {
	if !q.initialized {
		return errors.New("SQS queue not initialized")
	}

	input := &sqs.DeleteMessageInput{
		QueueUrl:      &q.queueURL,
		ReceiptHandle: &key,
	}

	if _, err := q.client.DeleteMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to delete SQS message: %w", err)
	}

	delete(q.pending, key)

	q.logger.Debug("SQS message deleted")

	return nil
}
