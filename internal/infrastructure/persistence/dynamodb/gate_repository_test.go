package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/repository"
)

var (
	testKey = gate.Key{Group: "g1", Service: "s1", Environment: "live"}
	testNow = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
)

func ccf() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func mustEncode(t *testing.T, g gate.Gate) map[string]types.AttributeValue {
	t.Helper()
	av, err := encodeGate(g)
	require.NoError(t, err)
	return av
}

func nameValues(names map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, v := range names {
		out = append(out, v)
	}
	return out
}

func TestItemCodec(t *testing.T) {
	g := gate.New(testKey, testNow).WithDisplayOrder(3)
	g.State = gate.Open
	g.Comments["c1"] = gate.Comment{ID: "c1", Message: "fix #1", Created: testNow}

	av := mustEncode(t, g)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "s1#live"}, av[attrServiceEnvironment])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "open"}, av[attrState])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2024-03-04T09:30:00Z"}, av[attrLastUpdated])

	decoded, key, err := decodeGate(av)
	require.NoError(t, err)
	assert.Equal(t, testKey, key)
	assert.Equal(t, g.State, decoded.State)
	assert.Equal(t, *g.DisplayOrder, *decoded.DisplayOrder)
	assert.True(t, testNow.Equal(decoded.LastUpdated))
	assert.Equal(t, "fix #1", decoded.Comments["c1"].Message)

	t.Run("absent display order is omitted", func(t *testing.T) {
		av := mustEncode(t, gate.New(testKey, testNow))
		assert.NotContains(t, av, attrDisplayOrder)
		assert.IsType(t, &types.AttributeValueMemberM{}, av[attrComments])
	})
}

func TestDecodeFailures(t *testing.T) {
	valid := func(t *testing.T) map[string]types.AttributeValue {
		return mustEncode(t, gate.New(testKey, testNow))
	}

	tests := []struct {
		name   string
		mutate func(map[string]types.AttributeValue)
	}{
		{name: "unknown state", mutate: func(av map[string]types.AttributeValue) {
			av[attrState] = &types.AttributeValueMemberS{Value: "ajar"}
		}},
		{name: "missing last updated", mutate: func(av map[string]types.AttributeValue) {
			delete(av, attrLastUpdated)
		}},
		{name: "bad timestamp", mutate: func(av map[string]types.AttributeValue) {
			av[attrLastUpdated] = &types.AttributeValueMemberS{Value: "yesterday"}
		}},
		{name: "sort key mismatch", mutate: func(av map[string]types.AttributeValue) {
			av[attrServiceEnvironment] = &types.AttributeValueMemberS{Value: "other#live"}
		}},
		{name: "missing group", mutate: func(av map[string]types.AttributeValue) {
			delete(av, attrGroup)
		}},
		{name: "bad comment timestamp", mutate: func(av map[string]types.AttributeValue) {
			av[attrComments] = &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
				"c1": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
					"id":      &types.AttributeValueMemberS{Value: "c1"},
					"message": &types.AttributeValueMemberS{Value: "x"},
					"created": &types.AttributeValueMemberS{Value: "not-a-time"},
				}},
			}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			av := valid(t)
			tt.mutate(av)
			_, _, err := decodeGate(av)
			assert.ErrorIs(t, err, errMalformed)
		})
	}
}

func TestInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("writes conditionally on absence", func(t *testing.T) {
		client := &fakeClient{}
		repo := NewGateRepository(client, "Gates", nil)

		got, err := repo.Insert(ctx, gate.New(testKey, testNow))
		require.NoError(t, err)
		assert.Equal(t, testKey, got.Key)
		assert.Equal(t, gate.Closed, got.State)

		require.Len(t, client.puts, 1)
		in := client.puts[0]
		assert.Equal(t, "Gates", aws.ToString(in.TableName))
		assert.Contains(t, aws.ToString(in.ConditionExpression), "attribute_not_exists")
		assert.Contains(t, nameValues(in.ExpressionAttributeNames), attrGroup)
	})

	t.Run("failed condition is AlreadyExists", func(t *testing.T) {
		client := &fakeClient{putItem: func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			return nil, ccf()
		}}
		repo := NewGateRepository(client, "Gates", nil)

		_, err := repo.Insert(ctx, gate.New(testKey, testNow))
		assert.True(t, repository.IsAlreadyExists(err), "got %v", err)
	})

	t.Run("transport error is Other", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		client := &fakeClient{putItem: func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			return nil, cause
		}}
		repo := NewGateRepository(client, "Gates", nil)

		_, err := repo.Insert(ctx, gate.New(testKey, testNow))
		assert.True(t, repository.IsOther(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestFindOne(t *testing.T) {
	ctx := context.Background()

	t.Run("absent item", func(t *testing.T) {
		client := &fakeClient{}
		repo := NewGateRepository(client, "Gates", nil)

		_, found, err := repo.FindOne(ctx, testKey)
		require.NoError(t, err)
		assert.False(t, found)

		require.Len(t, client.gets, 1)
		assert.True(t, aws.ToBool(client.gets[0].ConsistentRead))
		assert.Equal(t, keyAttributes(testKey), client.gets[0].Key)
	})

	t.Run("corrupt item is DecodeFailure", func(t *testing.T) {
		client := &fakeClient{getItem: func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			av := mustEncode(t, gate.New(testKey, testNow))
			av[attrState] = &types.AttributeValueMemberS{Value: "ajar"}
			return &dynamodb.GetItemOutput{Item: av}, nil
		}}
		repo := NewGateRepository(client, "Gates", nil)

		_, _, err := repo.FindOne(ctx, testKey)
		assert.True(t, repository.IsDecodeFailure(err), "got %v", err)
	})
}

func TestFindAll(t *testing.T) {
	ctx := context.Background()
	other := gate.Key{Group: "g2", Service: "s1", Environment: "qa"}

	t.Run("follows pagination", func(t *testing.T) {
		client := &fakeClient{}
		client.scan = func(in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			if in.ExclusiveStartKey == nil {
				return &dynamodb.ScanOutput{
					Items:            []map[string]types.AttributeValue{mustEncode(t, gate.New(testKey, testNow))},
					LastEvaluatedKey: keyAttributes(testKey),
				}, nil
			}
			return &dynamodb.ScanOutput{
				Items: []map[string]types.AttributeValue{mustEncode(t, gate.New(other, testNow))},
			}, nil
		}
		repo := NewGateRepository(client, "Gates", nil)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Len(t, client.scans, 2)
		assert.True(t, aws.ToBool(client.scans[0].ConsistentRead))
	})

	t.Run("one bad record fails the scan", func(t *testing.T) {
		client := &fakeClient{scan: func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			bad := mustEncode(t, gate.New(other, testNow))
			delete(bad, attrState)
			return &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{
				mustEncode(t, gate.New(testKey, testNow)),
				bad,
			}}, nil
		}}
		repo := NewGateRepository(client, "Gates", nil)

		all, err := repo.FindAll(ctx)
		assert.Nil(t, all)
		require.True(t, repository.IsDecodeFailure(err), "got %v", err)
		var repoErr *repository.Error
		require.ErrorAs(t, err, &repoErr)
		assert.Equal(t, other, repoErr.Key)
	})
}

func TestConditionalMutations(t *testing.T) {
	ctx := context.Background()
	failed := func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) { return nil, ccf() }

	t.Run("update state uses existence condition and returns ALL_NEW", func(t *testing.T) {
		later := testNow.Add(time.Minute)
		client := &fakeClient{updateItem: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			g := gate.New(testKey, later)
			g.State = gate.Open
			return &dynamodb.UpdateItemOutput{Attributes: mustEncode(t, g)}, nil
		}}
		repo := NewGateRepository(client, "Gates", nil)

		got, err := repo.UpdateState(ctx, testKey, gate.Open, later)
		require.NoError(t, err)
		assert.Equal(t, gate.Open, got.State)

		in := client.updates[0]
		assert.Equal(t, types.ReturnValueAllNew, in.ReturnValues)
		assert.Contains(t, aws.ToString(in.ConditionExpression), "attribute_exists")
		assert.Contains(t, nameValues(in.ExpressionAttributeNames), attrState)
		assert.Contains(t, nameValues(in.ExpressionAttributeNames), attrLastUpdated)
	})

	t.Run("failed condition is NotFound for every update", func(t *testing.T) {
		repo := NewGateRepository(&fakeClient{updateItem: failed}, "Gates", nil)

		_, err := repo.UpdateState(ctx, testKey, gate.Closed, testNow)
		assert.True(t, repository.IsNotFound(err))
		_, err = repo.UpdateDisplayOrder(ctx, testKey, 2, testNow)
		assert.True(t, repository.IsNotFound(err))
		_, err = repo.UpsertComment(ctx, testKey, gate.Comment{ID: "c1", Message: "m", Created: testNow}, testNow)
		assert.True(t, repository.IsNotFound(err))
		_, err = repo.DeleteCommentByID(ctx, testKey, "c1", testNow)
		assert.True(t, repository.IsNotFound(err))
	})

	t.Run("upsert comment addresses the nested entry by id", func(t *testing.T) {
		client := &fakeClient{updateItem: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			g := gate.New(testKey, testNow)
			g.Comments["a.b[0]"] = gate.Comment{ID: "a.b[0]", Message: "m", Created: testNow}
			return &dynamodb.UpdateItemOutput{Attributes: mustEncode(t, g)}, nil
		}}
		repo := NewGateRepository(client, "Gates", nil)

		got, err := repo.UpsertComment(ctx, testKey, gate.Comment{ID: "a.b[0]", Message: "m", Created: testNow}, testNow)
		require.NoError(t, err)
		assert.Contains(t, got.Comments, "a.b[0]")

		in := client.updates[0]
		assert.Equal(t, "SET #comments.#id = :comment, #last_updated = :last_updated", aws.ToString(in.UpdateExpression))
		assert.Equal(t, "attribute_exists(#group)", aws.ToString(in.ConditionExpression))
		assert.Equal(t, "a.b[0]", in.ExpressionAttributeNames["#id"])
		assert.Equal(t, &types.AttributeValueMemberS{Value: "2024-03-04T09:30:00Z"}, in.ExpressionAttributeValues[":last_updated"])
	})

	t.Run("delete comment requires gate and comment", func(t *testing.T) {
		client := &fakeClient{updateItem: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return &dynamodb.UpdateItemOutput{Attributes: mustEncode(t, gate.New(testKey, testNow))}, nil
		}}
		repo := NewGateRepository(client, "Gates", nil)

		got, err := repo.DeleteCommentByID(ctx, testKey, "c1", testNow)
		require.NoError(t, err)
		assert.Empty(t, got.Comments)

		in := client.updates[0]
		assert.Equal(t, "attribute_exists(#group) AND attribute_exists(#comments.#id)", aws.ToString(in.ConditionExpression))
		assert.Equal(t, "c1", in.ExpressionAttributeNames["#id"])
	})

	t.Run("delete maps failed condition to NotFound", func(t *testing.T) {
		client := &fakeClient{deleteItem: func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
			return nil, ccf()
		}}
		repo := NewGateRepository(client, "Gates", nil)

		err := repo.Delete(ctx, testKey)
		assert.True(t, repository.IsNotFound(err))
		assert.Contains(t, aws.ToString(client.deletes[0].ConditionExpression), "attribute_exists")
	})
}

func TestEnsureTable(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a missing table", func(t *testing.T) {
		client := &fakeClient{describeTable: func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
			return nil, &types.ResourceNotFoundException{Message: aws.String("missing")}
		}}

		created, err := EnsureTable(ctx, client, "GatesLocal", 0, nil)
		require.NoError(t, err)
		assert.True(t, created)
		require.Len(t, client.creates, 1)
		assert.Equal(t, "GatesLocal", aws.ToString(client.creates[0].TableName))
		assert.Len(t, client.creates[0].KeySchema, 2)
	})

	t.Run("leaves an existing table alone", func(t *testing.T) {
		client := &fakeClient{}
		created, err := EnsureTable(ctx, client, "GatesLocal", 0, nil)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Empty(t, client.creates)
	})

	t.Run("propagates describe failures", func(t *testing.T) {
		client := &fakeClient{describeTable: func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
			return nil, errors.New("access denied")
		}}
		_, err := EnsureTable(ctx, client, "GatesLocal", 0, nil)
		assert.Error(t, err)
		assert.Empty(t, client.creates)
	})
}

func TestCheckTable(t *testing.T) {
	ctx := context.Background()
	describe := func(status types.TableStatus) func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
		return func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
			return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: status}}, nil
		}
	}

	assert.NoError(t, CheckTable(ctx, &fakeClient{describeTable: describe(types.TableStatusActive)}, "Gates"))

	err := CheckTable(ctx, &fakeClient{describeTable: describe(types.TableStatusCreating)}, "Gates")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CREATING")

	err = CheckTable(ctx, &fakeClient{describeTable: func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
		return nil, &types.ResourceNotFoundException{Message: aws.String("missing")}
	}}, "Gates")
	assert.Error(t, err)
}
