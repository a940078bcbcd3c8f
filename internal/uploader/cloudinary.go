package uploader

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	cldupload "github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/flicky/e-games-api/internal/config"
)

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cfg config.ImagesConfig) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("parse cloudinary url: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: cfg.Folder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, r, cldupload.UploadParams{
		Folder:         u.folder,
		UniqueFilename: api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", name, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("upload %s: no url returned", name)
	}
	return res.SecureURL, nil
}
