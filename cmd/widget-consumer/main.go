// The widget-consumer command polls a queue of widget change requests and
// applies them against the configured storage backend.
//
// The queue is either an S3 bucket (objects listed oldest-first) or an SQS
// queue; widgets are stored either as JSON documents in S3 or as flattened
// items in DynamoDB. The process runs until terminated and exposes
// /healthz and /metrics endpoints while it does.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/widgetmgr/consumer/consumer"
	"github.com/widgetmgr/consumer/dynamodb"
	"github.com/widgetmgr/consumer/s3"
	"github.com/widgetmgr/consumer/sqs"
	"github.com/widgetmgr/consumer/telemetry"
)

// Queue and storage backend selectors.
const (
	queueTypeS3  = "s3"
	queueTypeSQS = "sqs"

	storageDocument = "document"
	storageTable    = "table"
)

var (
	flagQueueType     string
	flagRequestBucket string
	flagRequestQueue  string
	flagStorage       string
	flagWidgetBucket  string
	flagWidgetTable   string
	flagSkipSchema    bool
	flagRegion        string
	flagPollInterval  time.Duration
	flagListen        string
)

func main() {
	cmd := &cobra.Command{
		Use:           "widget-consumer",
		Short:         "Consume widget change requests from a queue into S3 or DynamoDB",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.Flags().StringVar(&flagQueueType, "queue-type", queueTypeS3, "queue backend: s3 or sqs")
	cmd.Flags().StringVar(&flagRequestBucket, "request-bucket", "", "S3 bucket holding request messages (queue-type s3)")
	cmd.Flags().StringVar(&flagRequestQueue, "request-queue", "", "SQS queue holding request messages (queue-type sqs)")
	cmd.Flags().StringVar(&flagStorage, "storage", storageDocument, "storage backend: document (S3) or table (DynamoDB)")
	cmd.Flags().StringVar(&flagWidgetBucket, "widget-bucket", "", "S3 bucket for widget documents (storage document)")
	cmd.Flags().StringVar(&flagWidgetTable, "widget-table", "", "DynamoDB table for widgets (storage table)")
	cmd.Flags().BoolVar(&flagSkipSchema, "skip-schema-validation", false, "skip DynamoDB table schema validation at startup")
	cmd.Flags().StringVar(&flagRegion, "region", "", "AWS region (defaults to the SDK's resolution)")
	cmd.Flags().DurationVar(&flagPollInterval, "poll-interval", 100*time.Millisecond, "idle sleep between polls when the queue is empty")
	cmd.Flags().StringVar(&flagListen, "listen", ":8080", "address for the health and metrics endpoints")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	logger := telemetry.SetupLogger()
	logger.Info("starting widget-consumer",
		"queue_type", flagQueueType,
		"storage", flagStorage,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var loadOpts []func(*awsconfig.LoadOptions) error
	if flagRegion != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(flagRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	source, err := buildSource(ctx, &awsCfg, logger)
	if err != nil {
		return err
	}

	sink, err := buildSink(ctx, &awsCfg, logger)
	if err != nil {
		return err
	}

	poller, err := consumer.New(consumer.Config{
		Source:       source,
		Sink:         sink,
		PollInterval: flagPollInterval,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create poller: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: flagListen, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poller.Run(ctx)
	})

	g.Go(func() error {
		logger.Info("listening", "addr", flagListen)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("widget-consumer stopped")

	return nil
}

// buildSource wires the message source selected by --queue-type.
func buildSource(ctx context.Context, awsCfg *aws.Config, logger *slog.Logger) (consumer.Source, error) {
	switch flagQueueType {
	case queueTypeS3:
		if flagRequestBucket == "" {
			return nil, errors.New("--request-bucket is required with --queue-type s3")
		}

		queue := s3.NewQueue(awsCfg, flagRequestBucket, logger)
		if err := queue.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to request bucket: %w", err)
		}

		return queue, nil

	case queueTypeSQS:
		if flagRequestQueue == "" {
			return nil, errors.New("--request-queue is required with --queue-type sqs")
		}

		queue, err := sqs.New(awsCfg, flagRequestQueue, logger).Init(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize request queue: %w", err)
		}

		return queue, nil

	default:
		return nil, fmt.Errorf("unknown queue type %q (want %s or %s)", flagQueueType, queueTypeS3, queueTypeSQS)
	}
}

// buildSink wires the storage backend selected by --storage.
func buildSink(ctx context.Context, awsCfg *aws.Config, logger *slog.Logger) (consumer.Sink, error) {
	switch flagStorage {
	case storageDocument:
		if flagWidgetBucket == "" {
			return nil, errors.New("--widget-bucket is required with --storage document")
		}

		bucket := s3.NewBucket(awsCfg, flagWidgetBucket, logger)
		if err := bucket.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to widget bucket: %w", err)
		}

		return bucket, nil

	case storageTable:
		if flagWidgetTable == "" {
			return nil, errors.New("--widget-table is required with --storage table")
		}

		table := dynamodb.New(awsCfg, flagWidgetTable, logger)
		if err := table.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to widget table: %w", err)
		}

		if err := table.Init(ctx, flagSkipSchema); err != nil {
			return nil, fmt.Errorf("failed to validate widget table: %w", err)
		}

		return table, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %s or %s)", flagStorage, storageDocument, storageTable)
	}
}
