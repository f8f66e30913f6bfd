package upload

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// uploadAPI is the part of the Cloudinary upload API the store uses
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryUploader hosts images on Cloudinary
type CloudinaryUploader struct {
	api    uploadAPI
	folder string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errors.Wrap(err, "cloudinary client")
	}
	return &CloudinaryUploader{api: &cld.Upload, folder: folder}, nil
}

func (u *CloudinaryUploader) Name() string {
	return "cloudinary"
}

// Upload stores r under a fresh public id. The client's filename never
// names the asset, so equal filenames cannot replace each other.
func (u *CloudinaryUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	res, err := u.api.Upload(ctx, r, uploader.UploadParams{
		Folder:    u.folder,
		PublicID:  uuid.NewString(),
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", errors.Wrapf(err, "cloudinary upload %s", filename)
	}
	if res.Error.Message != "" {
		return "", errors.Errorf("cloudinary upload %s: %s", filename, res.Error.Message)
	}
	return res.SecureURL, nil
}
