package awsclient

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EndpointsAreIndependent(t *testing.T) {
	c, err := New(context.Background(), "us-east-1",
		ConnAttempts(1),
		StaticCredentials("key", "secret"),
		Endpoint("http://minio:9000"),
		UsePathStyle(true),
	)
	require.NoError(t, err)

	assert.Equal(t, "http://minio:9000", aws.ToString(c.S3.Options().BaseEndpoint))
	assert.True(t, c.S3.Options().UsePathStyle)
	assert.Nil(t, c.DynamoDB.Options().BaseEndpoint)
}

func TestNew_DynamoDBEndpoint(t *testing.T) {
	c, err := New(context.Background(), "us-east-1",
		ConnAttempts(1),
		StaticCredentials("key", "secret"),
		DynamoDBEndpoint("http://dynamodb-local:8000"),
	)
	require.NoError(t, err)

	assert.Equal(t, "http://dynamodb-local:8000", aws.ToString(c.DynamoDB.Options().BaseEndpoint))
	assert.Nil(t, c.S3.Options().BaseEndpoint)
}
