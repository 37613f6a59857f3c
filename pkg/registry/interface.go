// Package registry defines interfaces and data types used to search the
// commercial register and download register documents from a backing portal.
package registry

import (
	"context"

	"resolver/pkg/domain"
)

// Client is the abstraction for register portals. Implementations search the
// register for candidate rows and fetch documents offered on those rows.
type Client interface {
	// Search runs a keyword search against the portal and returns the result
	// rows in page order. An empty slice is a valid outcome; the portal
	// intermittently returns empty pages, so callers are expected to retry.
	Search(ctx context.Context, query string) ([]domain.Company, error)
	// FetchDocument downloads the raw PDF behind a document link id obtained
	// from a previous Search.
	FetchDocument(ctx context.Context, linkID string) ([]byte, error)
}
