package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"guysocial/internal/common"
)

// Category buckets uploaded attachments by kind inside the owner's
// namespace.
type Category string

const (
	CategoryImage Category = "image"
	CategoryAudio Category = "audio"
	CategoryFile  Category = "file"
)

// SourceFile is a local, ephemeral file staged for upload.
type SourceFile struct {
	Name     string
	Size     int64
	MimeType string
	Reader   io.Reader
}

// IsImage reports whether the staged file is an image, which drives
// composer preview behavior.
func (f *SourceFile) IsImage() bool {
	return len(f.MimeType) >= 6 && f.MimeType[:6] == "image/"
}

// Uploader pushes attachment bytes to object storage and returns the
// permanent reference. It does not retry; the caller decides.
type Uploader struct {
	storage  ObjectStorage
	maxBytes int64
	now      func() time.Time
}

func NewUploader(storage ObjectStorage, maxBytes int64) *Uploader {
	return &Uploader{
		storage:  storage,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// Upload stores the file under the owner's namespace and returns its
// public URL and media type. Oversized files are rejected before any
// network call.
func (u *Uploader) Upload(ctx context.Context, src *SourceFile, ownerID uint64, category Category) (*common.Attachment, error) {
	if src == nil || src.Reader == nil {
		return nil, common.NewValidationError("no file to upload")
	}
	if u.maxBytes > 0 && src.Size > u.maxBytes {
		return nil, common.NewValidationError(
			fmt.Sprintf("file exceeds %d byte limit", u.maxBytes))
	}

	objectName := u.objectName(src, ownerID, category)

	if err := u.storage.EnsureBucket(ctx); err != nil {
		return nil, common.NewDependencyError("object storage", err)
	}
	if err := u.storage.Put(ctx, objectName, src.Reader, src.Size, src.MimeType); err != nil {
		return nil, common.NewDependencyError("object storage", err)
	}

	return &common.Attachment{
		URL:      u.storage.PublicURL(objectName),
		MimeType: src.MimeType,
	}, nil
}

// objectName builds a collision-free name: owner namespace, category,
// millisecond timestamp plus the original extension.
func (u *Uploader) objectName(src *SourceFile, ownerID uint64, category Category) string {
	ext := filepath.Ext(src.Name)
	return fmt.Sprintf("%d/%s/%d%s", ownerID, category, u.now().UnixMilli(), ext)
}
