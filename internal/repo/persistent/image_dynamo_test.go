package persistent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct{ mock.Mock }

func (m *mockDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func (m *mockDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}

func (m *mockDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.UpdateItemOutput)
	return out, args.Error(1)
}

func (m *mockDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.ScanOutput)
	return out, args.Error(1)
}

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func record(id, status string, tags types.AttributeValue) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"imageId":    s(id),
		"storageKey": s("uploads/" + id + "/a.jpg"),
		"fileName":   s("a.jpg"),
		"fileType":   s("image/jpeg"),
		"status":     s(status),
		"createdAt":  s("2025-06-01T10:00:00Z"),
	}
	if tags != nil {
		item["tags"] = tags
	}
	return item
}

func TestNormalizeTags(t *testing.T) {
	cases := []struct {
		name string
		in   types.AttributeValue
		want []string
	}{
		{"string set", &types.AttributeValueMemberSS{Value: []string{"beach", "sunset"}}, []string{"beach", "sunset"}},
		{"list", &types.AttributeValueMemberL{Value: []types.AttributeValue{s("cat"), &types.AttributeValueMemberN{Value: "1"}, s("dog")}}, []string{"cat", "dog"}},
		{"empty map", &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}}, []string{}},
		{"null", &types.AttributeValueMemberNULL{Value: true}, []string{}},
		{"missing", nil, []string{}},
		{"plain string", s("cat"), []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeTags(tc.in)
			require.NotNil(t, got)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestImageDynamoRepo_Create(t *testing.T) {
	m := &mockDynamo{}
	repo := NewImageDynamoRepo(m, "images")

	m.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		id, _ := in.Item["imageId"].(*types.AttributeValueMemberS)
		status, _ := in.Item["status"].(*types.AttributeValueMemberS)
		_, hasTags := in.Item["tags"].(*types.AttributeValueMemberL)
		return *in.TableName == "images" &&
			id != nil && id.Value == "abc" &&
			status != nil && status.Value == "PENDING" &&
			hasTags &&
			in.ConditionExpression != nil
	})).Return(&dynamodb.PutItemOutput{}, nil).Once()

	err := repo.Create(context.Background(), &entity.Image{
		ImageID:    "abc",
		StorageKey: "uploads/abc/a.jpg",
		FileName:   "a.jpg",
		FileType:   "image/jpeg",
		Status:     entity.Pending,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestImageDynamoRepo_GetByID(t *testing.T) {
	t.Run("legacy string set", func(t *testing.T) {
		m := &mockDynamo{}
		repo := NewImageDynamoRepo(m, "images")

		m.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{
			Item: record("abc", "COMPLETED", &types.AttributeValueMemberSS{Value: []string{"beach"}}),
		}, nil)

		image, err := repo.GetByID(context.Background(), "abc")
		require.NoError(t, err)
		require.Equal(t, "abc", image.ImageID)
		require.Equal(t, entity.Completed, image.Status)
		require.Equal(t, []string{"beach"}, image.Tags)
		require.Equal(t, 2025, image.CreatedAt.Year())
	})

	t.Run("pending without tags", func(t *testing.T) {
		m := &mockDynamo{}
		repo := NewImageDynamoRepo(m, "images")

		m.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{
			Item: record("abc", "PENDING", nil),
		}, nil)

		image, err := repo.GetByID(context.Background(), "abc")
		require.NoError(t, err)
		require.NotNil(t, image.Tags)
		require.Empty(t, image.Tags)
	})

	t.Run("not found", func(t *testing.T) {
		m := &mockDynamo{}
		repo := NewImageDynamoRepo(m, "images")

		m.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		_, err := repo.GetByID(context.Background(), "missing")
		require.ErrorIs(t, err, errs.ErrRecordNotFound)
	})
}

func TestImageDynamoRepo_Search(t *testing.T) {
	m := &mockDynamo{}
	repo := NewImageDynamoRepo(m, "images")

	var captured *dynamodb.ScanInput
	m.On("Scan", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*dynamodb.ScanInput)
	}).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			record("a", "COMPLETED", &types.AttributeValueMemberL{Value: []types.AttributeValue{s("beach"), s("sunset")}}),
		},
		LastEvaluatedKey: map[string]types.AttributeValue{"imageId": s("a")},
	}, nil).Once()
	m.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			record("b", "COMPLETED", &types.AttributeValueMemberSS{Value: []string{"sunset", "beach", "sea"}}),
		},
	}, nil).Once()

	images, err := repo.Search(context.Background(), []string{"beach", "sunset"})
	require.NoError(t, err)
	require.Len(t, images, 2)
	require.Equal(t, []string{"sunset", "beach", "sea"}, images[1].Tags)

	require.NotNil(t, captured.FilterExpression)
	require.Contains(t, *captured.FilterExpression, "contains")

	var values []string
	for _, v := range captured.ExpressionAttributeValues {
		if sv, ok := v.(*types.AttributeValueMemberS); ok {
			values = append(values, sv.Value)
		}
	}
	require.ElementsMatch(t, []string{"COMPLETED", "beach", "sunset"}, values)

	names := make([]string, 0)
	for _, n := range captured.ExpressionAttributeNames {
		names = append(names, n)
	}
	require.ElementsMatch(t, []string{"status", "tags"}, names)
	m.AssertExpectations(t)
}

func TestImageDynamoRepo_SearchFailure(t *testing.T) {
	m := &mockDynamo{}
	repo := NewImageDynamoRepo(m, "images")

	m.On("Scan", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := repo.Search(context.Background(), []string{"cat"})
	require.Error(t, err)
}

func TestImageDynamoRepo_MarkCompleted(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		m := &mockDynamo{}
		repo := NewImageDynamoRepo(m, "images")

		m.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			key, _ := in.Key["imageId"].(*types.AttributeValueMemberS)
			return key != nil && key.Value == "abc" && in.UpdateExpression != nil && in.ConditionExpression != nil
		})).Return(&dynamodb.UpdateItemOutput{}, nil)

		require.NoError(t, repo.MarkCompleted(context.Background(), "abc", nil, time.Now()))
	})

	t.Run("record missing", func(t *testing.T) {
		m := &mockDynamo{}
		repo := NewImageDynamoRepo(m, "images")

		m.On("UpdateItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{Message: strPtr("failed")})

		err := repo.MarkCompleted(context.Background(), "abc", []string{"cat"}, time.Now())
		require.ErrorIs(t, err, errs.ErrRecordNotFound)
	})

	t.Run("already failed", func(t *testing.T) {
		m := &mockDynamo{}
		repo := NewImageDynamoRepo(m, "images")

		m.On("UpdateItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{Item: record("abc", "FAILED", nil)})

		err := repo.MarkCompleted(context.Background(), "abc", []string{"cat"}, time.Now())
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		require.Contains(t, err.Error(), "FAILED")
	})
}

func TestImageDynamoRepo_MarkFailed_NeverRevertsCompleted(t *testing.T) {
	m := &mockDynamo{}
	repo := NewImageDynamoRepo(m, "images")

	m.On("UpdateItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Item: record("abc", "COMPLETED", nil)})

	err := repo.MarkFailed(context.Background(), "abc", "boom", time.Now())
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func strPtr(v string) *string { return &v }
