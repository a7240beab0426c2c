// Package storage provides object storage for user-uploaded media, currently
// vehicle photos.
package storage

import "context"

// ObjectStorage uploads binary objects and returns their public URLs.
type ObjectStorage interface {
	// Upload writes data at the given path and returns a URL the object can
	// be fetched from.
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}
