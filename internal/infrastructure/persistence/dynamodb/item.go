package dynamodb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"gates-backend/internal/domain/gate"
)

// Attribute names of the stored record.
const (
	attrGroup              = "group"
	attrServiceEnvironment = "service_environment"
	attrState              = "state"
	attrLastUpdated        = "last_updated"
	attrDisplayOrder       = "display_order"
	attrComments           = "comments"
)

// gateItem is the on-disk layout of a gate.
type gateItem struct {
	Group              string                 `dynamodbav:"group"`
	ServiceEnvironment string                 `dynamodbav:"service_environment"`
	Service            string                 `dynamodbav:"service"`
	Environment        string                 `dynamodbav:"environment"`
	State              string                 `dynamodbav:"state"`
	LastUpdated        string                 `dynamodbav:"last_updated"`
	DisplayOrder       *uint32                `dynamodbav:"display_order,omitempty"`
	Comments           map[string]commentItem `dynamodbav:"comments"`
}

type commentItem struct {
	ID      string `dynamodbav:"id"`
	Message string `dynamodbav:"message"`
	Created string `dynamodbav:"created"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing %s", field)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return t, nil
}

// keyAttributes builds the primary key of a gate.
func keyAttributes(key gate.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrGroup:              &types.AttributeValueMemberS{Value: key.Group},
		attrServiceEnvironment: &types.AttributeValueMemberS{Value: key.SortKey()},
	}
}

func toCommentItem(c gate.Comment) commentItem {
	return commentItem{ID: c.ID, Message: c.Message, Created: formatTime(c.Created)}
}

func toItem(g gate.Gate) gateItem {
	comments := make(map[string]commentItem, len(g.Comments))
	for id, c := range g.Comments {
		c.ID = id
		comments[id] = toCommentItem(c)
	}
	return gateItem{
		Group:              g.Key.Group,
		ServiceEnvironment: g.Key.SortKey(),
		Service:            g.Key.Service,
		Environment:        g.Key.Environment,
		State:              string(g.State),
		LastUpdated:        formatTime(g.LastUpdated),
		DisplayOrder:       g.DisplayOrder,
		Comments:           comments,
	}
}

// encodeGate marshals g into an attribute map.
func encodeGate(g gate.Gate) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(toItem(g))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gate: %w", err)
	}
	return av, nil
}

var errMalformed = errors.New("malformed gate record")

// decodeGate parses a stored record. It returns the key it could recover even
// when decoding fails, so callers can report which record is broken.
func decodeGate(av map[string]types.AttributeValue) (gate.Gate, gate.Key, error) {
	var item gateItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return gate.Gate{}, gate.Key{}, fmt.Errorf("%w: %v", errMalformed, err)
	}

	key := gate.Key{Group: item.Group, Service: item.Service, Environment: item.Environment}
	if key.Service == "" && key.Environment == "" {
		if svc, env, ok := strings.Cut(item.ServiceEnvironment, gate.SortKeySeparator); ok {
			key.Service, key.Environment = svc, env
		}
	}
	if err := key.Validate(); err != nil {
		return gate.Gate{}, key, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if item.ServiceEnvironment != key.SortKey() {
		return gate.Gate{}, key, fmt.Errorf("%w: sort key %q does not match service %q and environment %q",
			errMalformed, item.ServiceEnvironment, key.Service, key.Environment)
	}

	state, err := gate.ParseState(item.State)
	if err != nil {
		return gate.Gate{}, key, fmt.Errorf("%w: %v", errMalformed, err)
	}
	lastUpdated, err := parseTime(attrLastUpdated, item.LastUpdated)
	if err != nil {
		return gate.Gate{}, key, fmt.Errorf("%w: %v", errMalformed, err)
	}

	comments := make(map[string]gate.Comment, len(item.Comments))
	for id, c := range item.Comments {
		created, err := parseTime("comment created", c.Created)
		if err != nil {
			return gate.Gate{}, key, fmt.Errorf("%w: comment %s: %v", errMalformed, id, err)
		}
		comments[id] = gate.Comment{ID: id, Message: c.Message, Created: created}
	}

	return gate.Gate{
		Key:          key,
		State:        state,
		Comments:     comments,
		LastUpdated:  lastUpdated,
		DisplayOrder: item.DisplayOrder,
	}, key, nil
}
