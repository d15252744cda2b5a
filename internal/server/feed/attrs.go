package feed

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/iudanet/feedhub/internal/server/apperr"
)

func errorCodeAttr(code apperr.Code) attribute.KeyValue {
	return attribute.String("feed.error_code", string(code))
}

func userAttr(userID string) attribute.KeyValue {
	return attribute.String("feed.user_id", userID)
}

func postAttr(postID string) attribute.KeyValue {
	return attribute.String("feed.post_id", postID)
}
