package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalUploader stores image attachments on the local filesystem.
// Used in development and tests; files are served under baseURL by the
// router's static mount.
type LocalUploader struct {
	rootDir string
	baseURL string
}

// NewLocalUploader creates an uploader rooted at rootDir
func NewLocalUploader(rootDir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}

	return &LocalUploader{
		rootDir: rootDir,
		baseURL: baseURL,
	}, nil
}

// Upload writes the image under {rootDir}/{year}/{month}/{userID}/{fileID}{ext}
func (u *LocalUploader) Upload(ctx context.Context, data []byte, userID, originalFilename string) (*UploadResult, error) {
	fileID := uuid.New().String()
	extension := strings.ToLower(filepath.Ext(originalFilename))

	now := time.Now()
	key := fmt.Sprintf("%d/%02d/%s/%s%s",
		now.Year(), now.Month(), userID, fileID, extension)

	fullPath := filepath.Join(u.rootDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media subdir: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s", strings.TrimSuffix(u.baseURL, "/"), key)

	return &UploadResult{
		Key:  key,
		URL:  publicURL,
		Size: int64(len(data)),
	}, nil
}

// RootDir is the directory static file serving should mount
func (u *LocalUploader) RootDir() string {
	return u.rootDir
}
