package entity

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/andreyxaxa/Image-Tagger/pkg/types/errs"
)

// StorageKeyPrefix is the folder every upload lands in.
const StorageKeyPrefix = "uploads"

var whitespaceRun = regexp.MustCompile(`\s+`)

// EncodeStorageKey builds uploads/{imageID}/{fileName} with whitespace runs replaced by "_".
// DecodeStorageKey is its inverse and both must change together.
func EncodeStorageKey(imageID, fileName string) string {
	return StorageKeyPrefix + "/" + imageID + "/" + whitespaceRun.ReplaceAllString(fileName, "_")
}

// DecodeStorageKey extracts the image id from a storage key.
// Keys that do not follow uploads/{id}/{name} fall back to the stem of the last segment.
func DecodeStorageKey(key string) (string, error) {
	parts := strings.Split(strings.Trim(key, "/"), "/")

	if len(parts) >= 3 && parts[0] == StorageKeyPrefix {
		id := parts[1]
		if id != "" {
			return id, nil
		}
	}

	name := parts[len(parts)-1]
	stem, _, _ := strings.Cut(name, ".")
	if stem == "" {
		return "", fmt.Errorf("DecodeStorageKey - key %q: %w", key, errs.ErrMalformedEvent)
	}

	return stem, nil
}

// UnescapeNotificationKey decodes an object key as it arrives in S3 event notifications.
func UnescapeNotificationKey(raw string) (string, error) {
	key, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("UnescapeNotificationKey - url.QueryUnescape: %w: %w", errs.ErrMalformedEvent, err)
	}

	return key, nil
}
