// Package sqs provides an AWS SQS message source for the widget consumer,
// as an alternative to polling an S3 bucket.
//
// [Queue] adapts SQS to the consumer's list/fetch/delete Source contract:
// NextKey issues a long-polling ReceiveMessage for a single message and
// returns its receipt handle as the message key, Fetch returns the body
// received alongside that handle, and Delete acknowledges the message via
// DeleteMessage. A message that is never deleted becomes visible again in
// SQS after its visibility timeout expires, so retained messages are
// redelivered, the same at-least-once behavior the S3 source offers.
//
// Create a Queue with [New] and initialize it with [Queue.Init], which
// resolves the queue URL:
//
//	queue, err := sqs.New(&awsCfg, "widget-requests", logger).Init(ctx)
//
// A Queue holds at most one message in flight and is not safe for
// concurrent use; the consumer's poller processes messages one at a time.
package sqs
