package notion

import (
	"context"
	"fmt"
)

// maxPages bounds a pagination loop so a cursor that never ends cannot spin
// forever.
const maxPages = 1000

// PageFetcher fetches one page starting at cursor and returns its items, the
// next cursor and whether more pages follow.
type PageFetcher[T any] func(ctx context.Context, cursor string) (items []T, next string, more bool, err error)

// Paginate follows next_cursor until the listing is exhausted.
func Paginate[T any](ctx context.Context, fetch PageFetcher[T]) ([]T, error) {
	var all []T
	cursor := ""
	for page := 0; page < maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, next, more, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if !more || next == "" {
			return all, nil
		}
		cursor = next
	}
	return nil, fmt.Errorf("pagination exceeded %d pages", maxPages)
}
