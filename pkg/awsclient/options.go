package awsclient

import "time"

type Option func(c *Client)

func ConnAttempts(attempts int) Option {
	return func(c *Client) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.connTimeout = timeout
	}
}

// Endpoint points the S3 client at an S3-compatible store.
func Endpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// DynamoDBEndpoint points the DynamoDB client at DynamoDB Local or another compatible endpoint.
func DynamoDBEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.dynamoURL = endpoint
	}
}

// StaticCredentials replaces the default credential chain.
func StaticCredentials(accessKey, secretKey string) Option {
	return func(c *Client) {
		c.accessKey = accessKey
		c.secretKey = secretKey
	}
}

func UsePathStyle(use bool) Option {
	return func(c *Client) {
		c.usePathStyle = use
	}
}

// PingBucket makes New wait until HeadBucket on the bucket succeeds.
func PingBucket(bucket string) Option {
	return func(c *Client) {
		c.pingBucket = bucket
	}
}
