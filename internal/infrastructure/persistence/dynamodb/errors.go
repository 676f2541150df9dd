package dynamodb

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/repository"
)

// mapError converts a DynamoDB error into a repository error. A failed
// condition means onConditionFailed; everything else is KindOther.
func mapError(op string, key gate.Key, err error, onConditionFailed repository.Kind) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return &repository.Error{Kind: onConditionFailed, Op: op, Key: key}
	}
	return repository.NewOther(op, key, err)
}

// errorCode extracts the service error code for logging, if there is one.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
