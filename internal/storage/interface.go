package storage

import "context"

// Uploader stores post image attachments and hands back a public URL.
// Implementations: S3 for deployments, local disk for development and tests.
type Uploader interface {
	Upload(ctx context.Context, data []byte, userID, originalFilename string) (*UploadResult, error)
}

// UploadResult contains the stored object's location
type UploadResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

var (
	_ Uploader = (*S3Uploader)(nil)
	_ Uploader = (*LocalUploader)(nil)
)
