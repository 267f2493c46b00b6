package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/Image-Tagger/internal/entity"
	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// Attributes
	imageIDAttr       = "imageId"
	statusAttr        = "status"
	tagsAttr          = "tags"
	failureReasonAttr = "failureReason"
	labeledAtAttr     = "labeledAt"
)

// DynamoDBAPI is the part of *dynamodb.Client the repo uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type ImageDynamoRepo struct {
	client DynamoDBAPI
	table  string
}

func NewImageDynamoRepo(client DynamoDBAPI, table string) *ImageDynamoRepo {
	return &ImageDynamoRepo{client: client, table: table}
}

func (r *ImageDynamoRepo) Create(ctx context.Context, image *entity.Image) error {
	item, err := attributevalue.MarshalMap(image)
	if err != nil {
		return fmt.Errorf("ImageDynamoRepo - Create - attributevalue.MarshalMap: %w", err)
	}
	item[tagsAttr] = &types.AttributeValueMemberL{Value: []types.AttributeValue{}}

	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(imageIDAttr))).
		Build()
	if err != nil {
		return fmt.Errorf("ImageDynamoRepo - Create - expression.Build: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      cond.Condition(),
		ExpressionAttributeNames: cond.Names(),
	})
	if err != nil {
		return fmt.Errorf("ImageDynamoRepo - Create - r.client.PutItem: %w", err)
	}

	return nil
}

func (r *ImageDynamoRepo) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			imageIDAttr: &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ImageDynamoRepo - GetByID - r.client.GetItem: %w", err)
	}

	if len(out.Item) == 0 {
		return nil, fmt.Errorf("ImageDynamoRepo - GetByID: %w", errs.ErrRecordNotFound)
	}

	image, err := unmarshalImage(out.Item)
	if err != nil {
		return nil, fmt.Errorf("ImageDynamoRepo - GetByID - unmarshalImage: %w", err)
	}

	return image, nil
}

// Search is a full table scan, so its cost grows with the table, not with the result.
func (r *ImageDynamoRepo) Search(ctx context.Context, keywords []string) ([]*entity.Image, error) {
	filter := expression.Name(statusAttr).Equal(expression.Value(string(entity.Completed)))
	for _, keyword := range keywords {
		filter = filter.And(expression.Name(tagsAttr).Contains(keyword))
	}

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("ImageDynamoRepo - Search - expression.Build: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	images := make([]*entity.Image, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ImageDynamoRepo - Search - paginator.NextPage: %w", err)
		}

		for _, item := range page.Items {
			image, err := unmarshalImage(item)
			if err != nil {
				return nil, fmt.Errorf("ImageDynamoRepo - Search - unmarshalImage: %w", err)
			}
			images = append(images, image)
		}
	}

	return images, nil
}

func (r *ImageDynamoRepo) MarkCompleted(ctx context.Context, id string, tags []string, at time.Time) error {
	if tags == nil {
		tags = []string{}
	}

	update := expression.
		Set(expression.Name(statusAttr), expression.Value(string(entity.Completed))).
		Set(expression.Name(tagsAttr), expression.Value(tags)).
		Set(expression.Name(labeledAtAttr), expression.Value(at)).
		Remove(expression.Name(failureReasonAttr))

	cond := expression.AttributeExists(expression.Name(imageIDAttr)).And(
		expression.Name(statusAttr).In(
			expression.Value(string(entity.Pending)),
			expression.Value(string(entity.Completed)),
		),
	)

	err := r.update(ctx, id, update, cond)
	if err != nil {
		return fmt.Errorf("ImageDynamoRepo - MarkCompleted: %w", err)
	}

	return nil
}

func (r *ImageDynamoRepo) MarkFailed(ctx context.Context, id, reason string, at time.Time) error {
	update := expression.
		Set(expression.Name(statusAttr), expression.Value(string(entity.Failed))).
		Set(expression.Name(failureReasonAttr), expression.Value(reason)).
		Set(expression.Name(labeledAtAttr), expression.Value(at))

	cond := expression.AttributeExists(expression.Name(imageIDAttr)).And(
		expression.Name(statusAttr).Equal(expression.Value(string(entity.Pending))),
	)

	err := r.update(ctx, id, update, cond)
	if err != nil {
		return fmt.Errorf("ImageDynamoRepo - MarkFailed: %w", err)
	}

	return nil
}

func (r *ImageDynamoRepo) update(ctx context.Context, id string, update expression.UpdateBuilder, cond expression.ConditionBuilder) error {
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("expression.Build: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			imageIDAttr: &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:                    expr.Update(),
		ConditionExpression:                 expr.Condition(),
		ExpressionAttributeNames:            expr.Names(),
		ExpressionAttributeValues:           expr.Values(),
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// the old item comes back only when the record exists
			if len(ccf.Item) == 0 {
				return errs.ErrRecordNotFound
			}
			return fmt.Errorf("%w: current status %s", errs.ErrInvalidTransition, statusOf(ccf.Item))
		}
		return fmt.Errorf("r.client.UpdateItem: %w", err)
	}

	return nil
}

func unmarshalImage(item map[string]types.AttributeValue) (*entity.Image, error) {
	var image entity.Image
	if err := attributevalue.UnmarshalMap(item, &image); err != nil {
		return nil, fmt.Errorf("attributevalue.UnmarshalMap: %w", err)
	}

	image.Tags = normalizeTags(item[tagsAttr])

	return &image, nil
}

// normalizeTags maps whatever the tags attribute holds to an ordered list.
// Older records store a string set; missing, NULL or other shapes become an empty list.
func normalizeTags(av types.AttributeValue) []string {
	switch v := av.(type) {
	case *types.AttributeValueMemberSS:
		return append(make([]string, 0, len(v.Value)), v.Value...)
	case *types.AttributeValueMemberL:
		tags := make([]string, 0, len(v.Value))
		for _, el := range v.Value {
			if s, ok := el.(*types.AttributeValueMemberS); ok {
				tags = append(tags, s.Value)
			}
		}
		return tags
	default:
		return []string{}
	}
}

func statusOf(item map[string]types.AttributeValue) string {
	if s, ok := item[statusAttr].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return "unknown"
}
