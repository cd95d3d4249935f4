package folio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxImageWidth    = 1600
	jpegQuality      = 85
	maxUploadSize    = 5 << 20 // 5MB
	uploadsURLPrefix = "/uploads"
)

// Upload errors are shown to the admin as form messages.
var (
	ErrUploadTooLarge   = errors.New("image is too large (max 5MB)")
	ErrUnsupportedImage = errors.New("only JPEG, PNG, GIF and WebP images are allowed")
)

// processImage decodes a JPEG, PNG, GIF or WebP image, scales it down to
// maxImageWidth and re-encodes it as JPEG on a white background.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		h = h * maxImageWidth / w
		w = maxImageWidth
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// saveUpload stores the image posted in field and returns its public path.
// It returns "" without error when the field is absent or empty.
func (a *App) saveUpload(c echo.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	if file.Size == 0 {
		return "", nil
	}
	if file.Size > maxUploadSize {
		return "", ErrUploadTooLarge
	}
	return a.storeImage(file)
}

func (a *App) storeImage(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := processImage(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.Config.UploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(a.Config.UploadsDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	a.logger.Info("image uploaded", "file", name, "original", file.Filename, "bytes", len(data))
	return uploadsURLPrefix + "/" + name, nil
}

// isUploadError reports whether err should be shown to the admin rather
// than treated as a server failure.
func isUploadError(err error) bool {
	return errors.Is(err, ErrUploadTooLarge) || errors.Is(err, ErrUnsupportedImage)
}
