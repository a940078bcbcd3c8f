// Package uploader stores game images and returns their public URLs.
package uploader

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// ErrDisabled is returned when no image storage is configured.
var ErrDisabled = errors.New("image upload disabled")

type ImageUploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// LogUploader is used when Cloudinary is not configured. It rejects every
// upload with ErrDisabled.
type LogUploader struct {
	log *slog.Logger
}

func NewLogUploader(log *slog.Logger) *LogUploader {
	return &LogUploader{log: log}
}

func (u *LogUploader) Upload(ctx context.Context, name string, _ io.Reader) (string, error) {
	u.log.WarnContext(ctx, "image not uploaded, cloudinary disabled", "file", name)
	return "", ErrDisabled
}
