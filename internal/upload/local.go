package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// LocalUploader writes files below Dir and returns URLs under URLPrefix.
// It backs development setups without Cloudinary credentials.
type LocalUploader struct {
	Dir       string
	URLPrefix string
}

func NewLocalUploader(dir, urlPrefix string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &LocalUploader{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (u *LocalUploader) Name() string {
	return "local"
}

func (u *LocalUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	f, err := os.Create(filepath.Join(u.Dir, name))
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "write upload file")
	}
	return u.URLPrefix + "/" + name, nil
}
