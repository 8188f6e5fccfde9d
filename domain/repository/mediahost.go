package repository

import "context"

// IMediaHost is the media-hosting upload collaborator. Upload fetches
// the source URL server-side and stores it under destinationKey,
// returning the hosted secure URL. Uploads are idempotent per key: the
// same key overwrites rather than duplicates.
type IMediaHost interface {
	Upload(ctx context.Context, sourceURL, destinationKey string) (string, error)
}
