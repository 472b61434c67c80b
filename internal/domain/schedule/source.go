package schedule

import "context"

// Source loads the published schedule document.
type Source interface {
	LoadDefinition(ctx context.Context) (Definition, error)
}
