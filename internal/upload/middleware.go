package upload

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/bytes"
	"go.uber.org/zap"
)

// FieldImage is the multipart field carrying the product image
const FieldImage = "image"

const contextKey = "upload_url"

// SingleFile accepts at most one file under field and uploads it before the
// handler runs. Requests that are not multipart pass through untouched.
// Files under any other field are rejected, as is a second file under field.
func SingleFile(u Uploader, field string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctype := c.Request().Header.Get(echo.HeaderContentType)
			if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
				return next(c)
			}
			form, err := c.MultipartForm()
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Malformed multipart body").SetInternal(err)
			}
			for name, files := range form.File {
				if name != field || len(files) > 1 {
					return echo.NewHTTPError(http.StatusBadRequest, "Unexpected field")
				}
			}
			files := form.File[field]
			if len(files) == 0 {
				return next(c)
			}

			if u == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Image storage unavailable")
			}
			fh := files[0]
			src, err := fh.Open()
			if err != nil {
				return err
			}
			defer src.Close()

			url, err := u.Upload(c.Request().Context(), fh.Filename, src)
			if err != nil {
				zap.L().Error("image upload failed",
					zap.String("store", u.Name()),
					zap.String("filename", fh.Filename),
					zap.Error(err))
				return err
			}
			zap.L().Info("image uploaded",
				zap.String("store", u.Name()),
				zap.String("filename", fh.Filename),
				zap.String("size", bytes.Format(fh.Size)),
				zap.String("url", url))
			c.Set(contextKey, url)
			return next(c)
		}
	}
}

// URL returns the uploaded file URL for this request, or ""
func URL(c echo.Context) string {
	if v, ok := c.Get(contextKey).(string); ok {
		return v
	}
	return ""
}
