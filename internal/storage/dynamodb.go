package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/totalfitness/kiosk-dispatch/internal/types"
)

// The whole log lives in a single item so that Write is last-write-wins,
// matching the durability the file store provides.
const callLogItemKey = "call-log"

// DynamoDBStore implements Store using AWS DynamoDB
type DynamoDBStore struct {
	client *dynamodb.Client
	config Config
	logger zerolog.Logger
}

type callLogItem struct {
	LogID   string               `dynamodbav:"LogID"`
	Entries []types.CallLogEntry `dynamodbav:"Entries"`
}

// NewDynamoDBStore creates a new DynamoDB-backed store
func NewDynamoDBStore(ctx context.Context, cfg Config, logger zerolog.Logger) (*DynamoDBStore, error) {
	var client *dynamodb.Client

	if cfg.Mode == ModeDynamoLocal {
		// For local mode, build the client directly without LoadDefaultConfig.
		// LoadDefaultConfig probes the EC2 IMDS endpoint which hangs on EC2
		// instances when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := &DynamoDBStore{
		client: client,
		config: cfg,
		logger: logger,
	}

	if cfg.Mode == ModeDynamoLocal {
		if err := store.createTableIfNotExists(ctx); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Str("table", cfg.CallLogTable).
		Msg("DynamoDB call log store initialized")

	return store, nil
}

func (s *DynamoDBStore) Read() ([]types.CallLogEntry, error) {
	result, err := s.client.GetItem(context.Background(), &dynamodb.GetItemInput{
		TableName: aws.String(s.config.CallLogTable),
		Key: map[string]dbtypes.AttributeValue{
			"LogID": &dbtypes.AttributeValueMemberS{Value: callLogItemKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get call log item: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item callLogItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal call log item: %w", err)
	}
	return item.Entries, nil
}

func (s *DynamoDBStore) Write(entries []types.CallLogEntry) error {
	item, err := attributevalue.MarshalMap(callLogItem{
		LogID:   callLogItemKey,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal call log item: %w", err)
	}

	_, err = s.client.PutItem(context.Background(), &dynamodb.PutItemInput{
		TableName: aws.String(s.config.CallLogTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put call log item: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) createTableIfNotExists(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.config.CallLogTable),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.config.CallLogTable),
		AttributeDefinitions: []dbtypes.AttributeDefinition{
			{AttributeName: aws.String("LogID"), AttributeType: dbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []dbtypes.KeySchemaElement{
			{AttributeName: aws.String("LogID"), KeyType: dbtypes.KeyTypeHash},
		},
		BillingMode: dbtypes.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("failed to create call log table: %w", err)
	}

	s.logger.Info().Str("table", s.config.CallLogTable).Msg("created call log table")
	return nil
}

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, logger zerolog.Logger) (Store, error) {
	cfg := LoadConfig()

	switch cfg.Mode {
	case ModeFile:
		return NewFileStore(cfg.FilePath), nil
	case ModeDynamoLocal, ModeDynamoAWS:
		return NewDynamoDBStore(ctx, cfg, logger)
	default:
		logger.Info().Msg("call log persistence disabled (LOG_STORE=none)")
		return NewNoopStore(), nil
	}
}
