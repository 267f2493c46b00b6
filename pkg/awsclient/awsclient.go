package awsclient

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
)

// Client holds one aws.Config and the service clients built from it.
type Client struct {
	connAttempts int
	connTimeout  time.Duration

	region       string
	endpoint     string
	dynamoURL    string
	accessKey    string
	secretKey    string
	usePathStyle bool
	pingBucket   string

	Config      aws.Config
	S3          *s3.Client
	Presign     *s3.PresignClient
	DynamoDB    *dynamodb.Client
	Rekognition *rekognition.Client
}

func New(ctx context.Context, region string, opts ...Option) (*Client, error) {
	c := &Client{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		region:       region,
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error
	for c.connAttempts > 0 {
		err = c.connect(ctx)
		if err == nil {
			break
		}

		log.Printf("AWS client is trying to connect, attempts left: %d", c.connAttempts)

		time.Sleep(c.connTimeout)

		c.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("AWSClient - New - connAttempts == 0: %w", err)
	}

	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(c.region),
	}
	if c.accessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.accessKey, c.secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("AWSClient - config.LoadDefaultConfig: %w", err)
	}

	c.Config = cfg

	c.S3 = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = c.usePathStyle
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})
	c.Presign = s3.NewPresignClient(c.S3)

	// DynamoDB has its own endpoint, an S3-compatible store does not serve it
	c.DynamoDB = dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if c.dynamoURL != "" {
			o.BaseEndpoint = aws.String(c.dynamoURL)
		}
	})

	// Rekognition always talks to AWS, S3-compatible endpoints do not serve it
	c.Rekognition = rekognition.NewFromConfig(cfg)

	if c.pingBucket == "" {
		return nil
	}

	// check connection
	_, err = c.S3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.pingBucket)})
	if err != nil {
		return fmt.Errorf("AWSClient - c.S3.HeadBucket: %w", err)
	}

	return nil
}
