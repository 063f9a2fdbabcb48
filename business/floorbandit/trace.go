package floorbandit

import "context"

type ctxKey string

// DecisionIDKey carries a caller-supplied decision id (an SDK retry reusing
// the id of the attempt it replaces). When absent the service mints one.
const DecisionIDKey ctxKey = "decision_id"

func DecisionIDFromContext(ctx context.Context) string {
	if v := ctx.Value(DecisionIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
