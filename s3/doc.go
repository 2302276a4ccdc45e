// Package s3 provides the S3-backed queue and widget storage for the widget
// consumer.
//
// # Queue
//
// [Queue] treats an S3 bucket as a message queue: producers drop request
// documents into the bucket, and the consumer lists the first available
// object (ListObjectsV2 with MaxKeys=1), fetches its body, and deletes it
// once processed. The bucket is not a transactional queue; there are no
// visibility timeouts, so two consumers can observe the same object before
// either deletes it.
//
// # Bucket
//
// [Bucket] stores widgets as JSON documents under
//
//	widgets/<owner-slug>/<widget-id>
//
// Create overwrites unconditionally (last write wins). Delete checks for the
// object first and treats absence as success, logging a warning. Update is
// not implemented and logs a warning without mutating anything.
//
// # Getting Started
//
// Create a [Queue] or [Bucket] with [NewQueue] or [NewBucket], then call
// Connect before use:
//
//	queue := s3.NewQueue(&awsCfg, "widget-requests", logger)
//	if err := queue.Connect(); err != nil { ... }
//
// By default Connect creates an AWS SDK v2 S3 client from the supplied
// aws.Config. Supply [WithAPI] to inject a custom or mock implementation.
package s3
