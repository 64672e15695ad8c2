package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// MaxImageSize bounds an uploaded recipe image.
const MaxImageSize = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DetectImage sniffs data and confirms it decodes as a supported image. It
// returns the file extension and content type to store it under.
func DetectImage(data []byte) (ext, contentType string, err error) {
	if len(data) == 0 {
		return "", "", ErrInvalidImage
	}
	if len(data) > MaxImageSize {
		return "", "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageSize)
	}

	mt := mimetype.Detect(data)
	for mime, e := range imageExtensions {
		if mt.Is(mime) {
			ext, contentType = e, mime
			break
		}
	}
	if ext == "" {
		return "", "", fmt.Errorf("%w: unsupported type %s", ErrInvalidImage, mt.String())
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return ext, contentType, nil
}
