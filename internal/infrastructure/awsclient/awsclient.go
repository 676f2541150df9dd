// Package awsclient builds the AWS service clients used by the gates service.
package awsclient

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"gates-backend/internal/config"
)

// Clients holds the initialized AWS service clients.
type Clients struct {
	DynamoDB    *dynamodb.Client
	EventBridge *eventbridge.Client
}

// RunningOnLambda reports whether the process runs inside AWS Lambda.
func RunningOnLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// LoadConfig resolves the shared AWS configuration. A local DynamoDB endpoint
// gets static dummy credentials so no real account is needed.
func LoadConfig(ctx context.Context, db config.Database) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(db.Region),
		awsconfig.WithRetryMaxAttempts(db.RetryMaxAttempts),
		awsconfig.WithHTTPClient(httpClient(db.ConnectTimeout)),
	}
	if db.IsLocal() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// New builds the DynamoDB and EventBridge clients.
func New(ctx context.Context, db config.Database, logger *zap.Logger) (*Clients, error) {
	start := time.Now()

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	cfg, err := LoadConfig(loadCtx, db)
	if err != nil {
		return nil, err
	}

	clients := &Clients{
		DynamoDB: dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			o.RetryMode = aws.RetryModeAdaptive
			if db.IsLocal() {
				o.BaseEndpoint = aws.String(db.Endpoint)
			}
		}),
		EventBridge: eventbridge.NewFromConfig(cfg),
	}

	logger.Info("AWS clients initialized",
		zap.String("region", cfg.Region),
		zap.Bool("local_dynamodb", db.IsLocal()),
		zap.Duration("duration", time.Since(start)),
	)
	return clients, nil
}

// httpClient tunes the connection pool. Lambda keeps fewer idle connections
// per host since one instance serves one request at a time.
func httpClient(timeout time.Duration) *awshttp.BuildableClient {
	maxIdle, maxPerHost := 200, 20
	if RunningOnLambda() {
		maxIdle, maxPerHost = 100, 10
	}
	client := awshttp.NewBuildableClient().WithTransportOptions(func(tr *http.Transport) {
		tr.MaxIdleConns = maxIdle
		tr.MaxIdleConnsPerHost = maxPerHost
		tr.IdleConnTimeout = 90 * time.Second
		tr.TLSHandshakeTimeout = 10 * time.Second
	})
	if timeout > 0 {
		client = client.WithTimeout(timeout)
	}
	return client
}
