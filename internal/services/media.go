package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MediaStore is the external object storage boundary. Satisfied by
// storage.S3Store.
type MediaStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	DeleteByURL(ctx context.Context, mediaURL string) error
}

// resolveMedia turns the client-supplied image field into a hosted URL.
// Clients either send a data URI, which gets uploaded under a fresh key, or
// an already-hosted URL, which is stored as-is.
func resolveMedia(ctx context.Context, store MediaStore, prefix, image string) (string, error) {
	if !strings.HasPrefix(image, "data:") {
		return image, nil
	}
	contentType, data, err := decodeDataURI(image)
	if err != nil {
		return "", err
	}
	key := prefix + "/" + uuid.NewString() + extensionFor(contentType)
	return store.Upload(ctx, key, contentType, data)
}

func decodeDataURI(uri string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data uri")
	}
	contentType = strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("decode data uri: %w", err)
		}
		return contentType, data, nil
	}
	return contentType, []byte(payload), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
