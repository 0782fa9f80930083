package predict

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImage_Extensions(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
		ctype   string
	}{
		{"leaf.png", nil, "image/png"},
		{"leaf.JPG", nil, "image/jpeg"},
		{"dir/leaf.jpeg", nil, "image/jpeg"},
		{"leaf.gif", ErrUnsupportedType, ""},
		{"leaf", ErrUnsupportedType, ""},
		{"leaf.png.exe", ErrUnsupportedType, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewImage(tt.name, []byte("x"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ctype, img.ContentType())
			assert.Equal(t, filepath.Base(tt.name), img.Name)
		})
	}
}

func TestNewImage_Size(t *testing.T) {
	_, err := NewImage("leaf.png", nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = NewImage("leaf.png", bytes.Repeat([]byte{0}, MaxImageBytes+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = NewImage("leaf.png", bytes.Repeat([]byte{0}, MaxImageBytes))
	assert.NoError(t, err)
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leaf.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o600))

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "leaf.jpg", img.Name)
	assert.Equal(t, []byte("jpeg-bytes"), img.Data)

	_, err = LoadImage(filepath.Join(dir, "missing.jpg"))
	assert.ErrorContains(t, err, "file not found")
}
