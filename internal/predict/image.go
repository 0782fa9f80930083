package predict

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageBytes is the largest upload the prediction service accepts.
const MaxImageBytes = 16 << 20

var (
	ErrUnsupportedType = errors.New("invalid file type, upload a PNG, JPG, or JPEG image")
	ErrImageTooLarge   = errors.New("image exceeds 16 MiB")
	ErrEmptyImage      = errors.New("image is empty")
)

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Image is a user-selected leaf photo ready for upload.
type Image struct {
	Name string
	Data []byte
}

// NewImage validates name and data the way the service does before it
// accepts an upload.
func NewImage(name string, data []byte) (Image, error) {
	if _, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; !ok {
		return Image{}, fmt.Errorf("%s: %w", name, ErrUnsupportedType)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%s: %w", name, ErrEmptyImage)
	}
	if len(data) > MaxImageBytes {
		return Image{}, fmt.Errorf("%s: %w", name, ErrImageTooLarge)
	}
	return Image{Name: filepath.Base(name), Data: data}, nil
}

// LoadImage reads and validates an image from disk.
func LoadImage(path string) (Image, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Image{}, fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return Image{}, err
	}
	if info.Size() > MaxImageBytes {
		return Image{}, fmt.Errorf("%s: %w", path, ErrImageTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	return NewImage(path, data)
}

// ContentType returns the MIME type implied by the file extension.
func (img Image) ContentType() string {
	return contentTypes[strings.ToLower(filepath.Ext(img.Name))]
}
