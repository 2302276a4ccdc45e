package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/widgetmgr/consumer/widget"
)

// PartitionKey is the DynamoDB partition key attribute name. It holds the
// widget ID, so uniqueness is global on the ID.
const PartitionKey = "id"

// Table stores widgets as flattened items in a DynamoDB table. It
// implements the consumer's Sink contract.
//
// Use [New] to create a Table, [Table.Connect] to initialize the underlying
// DynamoDB client, and [Table.Init] to validate the table schema.
type Table struct {
	client    API
	tableName string
	awsCfg    *aws.Config
	opts      *Options
	logger    *slog.Logger
}

// New creates a Table configured with the given AWS config, table name, and
// optional options. Call [Table.Connect] on the returned Table before use.
func New(awsCfg *aws.Config, tableName string, logger *slog.Logger, opts ...Option) *Table {
	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Table{
		tableName: tableName,
		awsCfg:    awsCfg,
		opts:      options,
		logger:    logger.With("backend", "dynamodb", "table", tableName),
	}
}

// Connect initializes the DynamoDB client from the AWS config provided to
// [New]. It must be called before any other Table methods.
func (t *Table) Connect() error {
	if t.tableName == "" {
		return errors.New("table name cannot be empty")
	}

	// Use injected DynamoDB API if provided (useful for testing).
	if t.opts.api != nil {
		t.client = t.opts.api
	} else {
		t.client = dynamodb.NewFromConfig(*t.awsCfg)
	}

	return nil
}

// Init validates the DynamoDB table schema: the table must exist, be
// active, and have a simple primary key on the "id" attribute.
//
// Pass skipSchemaValidation true to skip all checks and return immediately,
// which is useful when schema validation is managed separately.
func (t *Table) Init(ctx context.Context, skipSchemaValidation bool) error {
	if skipSchemaValidation {
		return nil
	}

	input := &dynamodb.DescribeTableInput{
		TableName: aws.String(t.tableName),
	}

	response, err := t.client.DescribeTable(ctx, input)
	if err != nil {
		var notFoundError *dynamodbtypes.ResourceNotFoundException
		if errors.As(err, &notFoundError) {
			return fmt.Errorf("table %s does not exist", t.tableName)
		}
		return fmt.Errorf("failed to describe table %s: %w", t.tableName, err)
	}

	if len(response.Table.KeySchema) != 1 {
		return fmt.Errorf("table %s has a composite primary key, expected a simple key on %s", t.tableName, PartitionKey)
	}

	if aws.ToString(response.Table.KeySchema[0].AttributeName) != PartitionKey {
		return fmt.Errorf("table %s has partition key %s, expected %s", t.tableName, aws.ToString(response.Table.KeySchema[0].AttributeName), PartitionKey)
	}

	if response.Table.TableStatus != dynamodbtypes.TableStatusActive {
		return fmt.Errorf("table %s is not active (status: %s)", t.tableName, response.Table.TableStatus)
	}

	return nil
}

// Create derives the flattened widget item from req and writes it
// unconditionally: an existing item with the same ID is overwritten, last
// write wins.
func (t *Table) Create(ctx context.Context, req *widget.Request) error {
	if req.WidgetID == "" {
		return errors.New("widget ID cannot be empty")
	}

	item, err := attributevalue.MarshalMap(req.FlattenedItem())
	if err != nil {
		return fmt.Errorf("failed to marshal widget %s: %w", req.WidgetID, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: &t.tableName,
		Item:      item,
	}

	if _, err := t.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to write widget %s to table %s: %w", req.WidgetID, t.tableName, err)
	}

	t.logger.Info("widget stored",
		"widget_id", req.WidgetID,
		"request_id", req.RequestID,
	)

	return nil
}

// Delete removes the item for req's widget ID if it exists. An absent
// widget is not an error: a warning is logged, no delete call is made, and
// the request still counts as handled.
func (t *Table) Delete(ctx context.Context, req *widget.Request) error {
	if req.WidgetID == "" {
		return errors.New("widget ID cannot be empty")
	}

	key := map[string]dynamodbtypes.AttributeValue{
		PartitionKey: &dynamodbtypes.AttributeValueMemberS{Value: req.WidgetID},
	}

	getInput := &dynamodb.GetItemInput{
		TableName: &t.tableName,
		Key:       key,
	}

	output, err := t.client.GetItem(ctx, getInput)
	if err != nil {
		return fmt.Errorf("failed to look up widget %s in table %s: %w", req.WidgetID, t.tableName, err)
	}

	if len(output.Item) == 0 {
		t.logger.Warn("widget not found for deletion, no action taken",
			"widget_id", req.WidgetID,
			"request_id", req.RequestID,
		)

		return nil
	}

	deleteInput := &dynamodb.DeleteItemInput{
		TableName: &t.tableName,
		Key:       key,
	}

	if _, err := t.client.DeleteItem(ctx, deleteInput); err != nil {
		return fmt.Errorf("failed to delete widget %s from table %s: %w", req.WidgetID, t.tableName, err)
	}

	t.logger.Info("widget deleted",
		"widget_id", req.WidgetID,
		"request_id", req.RequestID,
	)

	return nil
}

// Update logs that update requests are not implemented and mutates nothing.
// This is an intentional stub, left as a future extension.
func (t *Table) Update(_ context.Context, req *widget.Request) error {
	t.logger.Warn("update requested but updates are not yet implemented",
		"widget_id", req.WidgetID,
		"request_id", req.RequestID,
	)

	return nil
}
