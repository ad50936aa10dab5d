package ports

import "context"

// UploadClient posts one batch of serialized assignments to the remote
// store. Implementations should return a non-nil error on any non-2xx
// response so the sidecar can apply its retry policy.
type UploadClient interface {
	Upload(ctx context.Context, batch []byte) error
}
