package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/repository"
)

// GateRepository stores gates in one DynamoDB table.
type GateRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

var _ repository.GateRepository = (*GateRepository)(nil)

// NewGateRepository creates a repository over tableName.
func NewGateRepository(client API, tableName string, logger *zap.Logger) *GateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GateRepository{
		client:    client,
		tableName: tableName,
		logger:    logger.Named("dynamodb"),
	}
}

// Insert writes the full record only if no item exists for the key.
func (r *GateRepository) Insert(ctx context.Context, g gate.Gate) (gate.Gate, error) {
	const op = repository.OpInsert

	item, err := encodeGate(g)
	if err != nil {
		return gate.Gate{}, repository.NewOther(op, g.Key, err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name(attrGroup).AttributeNotExists()).
		Build()
	if err != nil {
		return gate.Gate{}, repository.NewOther(op, g.Key, fmt.Errorf("failed to build expression: %w", err))
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return gate.Gate{}, r.fail(op, g.Key, err, repository.KindAlreadyExists)
	}

	r.logger.Debug("gate inserted", zap.String("key", g.Key.String()))
	return r.roundTrip(op, item)
}

// FindOne issues a strongly consistent point read.
func (r *GateRepository) FindOne(ctx context.Context, key gate.Key) (gate.Gate, bool, error) {
	const op = repository.OpFindOne

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            keyAttributes(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return gate.Gate{}, false, r.fail(op, key, err, repository.KindOther)
	}
	if len(out.Item) == 0 {
		return gate.Gate{}, false, nil
	}

	g, _, err := decodeGate(out.Item)
	if err != nil {
		return gate.Gate{}, false, repository.NewDecodeFailure(op, key, err)
	}
	return g, true, nil
}

// FindAll scans the whole table. A single undecodable record fails the scan.
func (r *GateRepository) FindAll(ctx context.Context) ([]gate.Gate, error) {
	const op = repository.OpFindAll

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:      aws.String(r.tableName),
		ConsistentRead: aws.Bool(true),
	})

	var gates []gate.Gate
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, r.fail(op, gate.Key{}, err, repository.KindOther)
		}
		for _, item := range page.Items {
			g, key, err := decodeGate(item)
			if err != nil {
				r.logger.Error("undecodable gate record",
					zap.String("key", key.String()),
					zap.Error(err),
				)
				return nil, repository.NewDecodeFailure(op, key, err)
			}
			gates = append(gates, g)
		}
	}

	r.logger.Debug("gates scanned", zap.Int("count", len(gates)))
	return gates, nil
}

// Delete removes the item if it exists.
func (r *GateRepository) Delete(ctx context.Context, key gate.Key) error {
	const op = repository.OpDelete

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name(attrGroup).AttributeExists()).
		Build()
	if err != nil {
		return repository.NewOther(op, key, fmt.Errorf("failed to build expression: %w", err))
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      keyAttributes(key),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return r.fail(op, key, err, repository.KindNotFound)
	}

	r.logger.Debug("gate deleted", zap.String("key", key.String()))
	return nil
}

// UpdateState sets state and last_updated on an existing item.
func (r *GateRepository) UpdateState(ctx context.Context, key gate.Key, state gate.State, now time.Time) (gate.Gate, error) {
	update := expression.Set(expression.Name(attrState), expression.Value(string(state))).
		Set(expression.Name(attrLastUpdated), expression.Value(formatTime(now)))
	return r.updateExisting(ctx, repository.OpUpdateState, key, update)
}

// UpdateDisplayOrder sets display_order and last_updated on an existing item.
func (r *GateRepository) UpdateDisplayOrder(ctx context.Context, key gate.Key, order uint32, now time.Time) (gate.Gate, error) {
	update := expression.Set(expression.Name(attrDisplayOrder), expression.Value(order)).
		Set(expression.Name(attrLastUpdated), expression.Value(formatTime(now)))
	return r.updateExisting(ctx, repository.OpUpdateDisplayOrder, key, update)
}

func (r *GateRepository) updateExisting(ctx context.Context, op string, key gate.Key, update expression.UpdateBuilder) (gate.Gate, error) {
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.Name(attrGroup).AttributeExists()).
		Build()
	if err != nil {
		return gate.Gate{}, repository.NewOther(op, key, fmt.Errorf("failed to build expression: %w", err))
	}

	return r.update(ctx, op, key, &dynamodb.UpdateItemInput{
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

// UpsertComment sets comments.<id> in place. The comment id is passed as an
// attribute name placeholder so it is never parsed as a document path.
func (r *GateRepository) UpsertComment(ctx context.Context, key gate.Key, comment gate.Comment, now time.Time) (gate.Gate, error) {
	const op = repository.OpUpsertComment

	value, err := attributevalue.Marshal(toCommentItem(comment))
	if err != nil {
		return gate.Gate{}, repository.NewOther(op, key, fmt.Errorf("failed to marshal comment: %w", err))
	}

	return r.update(ctx, op, key, &dynamodb.UpdateItemInput{
		UpdateExpression:    aws.String("SET #comments.#id = :comment, #last_updated = :last_updated"),
		ConditionExpression: aws.String("attribute_exists(#group)"),
		ExpressionAttributeNames: map[string]string{
			"#group":        attrGroup,
			"#comments":     attrComments,
			"#id":           comment.ID,
			"#last_updated": attrLastUpdated,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":comment":      value,
			":last_updated": &types.AttributeValueMemberS{Value: formatTime(now)},
		},
	})
}

// DeleteCommentByID removes comments.<id>. Missing gate and missing comment
// fail the same condition and surface as NotFound.
func (r *GateRepository) DeleteCommentByID(ctx context.Context, key gate.Key, commentID string, now time.Time) (gate.Gate, error) {
	return r.update(ctx, repository.OpDeleteCommentByID, key, &dynamodb.UpdateItemInput{
		UpdateExpression:    aws.String("REMOVE #comments.#id SET #last_updated = :last_updated"),
		ConditionExpression: aws.String("attribute_exists(#group) AND attribute_exists(#comments.#id)"),
		ExpressionAttributeNames: map[string]string{
			"#group":        attrGroup,
			"#comments":     attrComments,
			"#id":           commentID,
			"#last_updated": attrLastUpdated,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":last_updated": &types.AttributeValueMemberS{Value: formatTime(now)},
		},
	})
}

// update runs a conditional UpdateItem whose failed condition means NotFound
// and decodes the ALL_NEW image.
func (r *GateRepository) update(ctx context.Context, op string, key gate.Key, input *dynamodb.UpdateItemInput) (gate.Gate, error) {
	input.TableName = aws.String(r.tableName)
	input.Key = keyAttributes(key)
	input.ReturnValues = types.ReturnValueAllNew

	out, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		return gate.Gate{}, r.fail(op, key, err, repository.KindNotFound)
	}

	r.logger.Debug("gate updated", zap.String("operation", op), zap.String("key", key.String()))
	return r.roundTrip(op, out.Attributes)
}

// roundTrip decodes a record the adapter just wrote.
func (r *GateRepository) roundTrip(op string, item map[string]types.AttributeValue) (gate.Gate, error) {
	g, key, err := decodeGate(item)
	if err != nil {
		return gate.Gate{}, repository.NewDecodeFailure(op, key, err)
	}
	return g, nil
}

func (r *GateRepository) fail(op string, key gate.Key, err error, onConditionFailed repository.Kind) error {
	mapped := mapError(op, key, err, onConditionFailed)
	if repository.IsOther(mapped) {
		r.logger.Warn("dynamodb request failed",
			zap.String("operation", op),
			zap.String("key", key.String()),
			zap.String("code", errorCode(err)),
			zap.Error(err),
		)
	}
	return mapped
}
