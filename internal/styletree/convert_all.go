// File: internal/styletree/convert_all.go
package styletree

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/scenegraph"
)

// ConvertAll converts independent roots concurrently, at most limit at a time
// (unbounded when limit <= 0). Results keep the input order; elided roots are
// nil. A single conversion cannot be interrupted, so ctx is only checked
// before each root starts.
func ConvertAll(ctx context.Context, roots []scenegraph.Node, limit int) ([]*schemas.StyleElement, error) {
	results := make([]*schemas.StyleElement, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, root := range roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Convert(root)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
