package objectstore

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable wraps transient object storage failures.
var ErrUnavailable = errors.New("object storage unavailable")

// Deleter is the single object storage capability authgate needs.
// Deleting a missing object must succeed.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

var externalSchemes = []string{"http://", "https://"}

// AssetKey maps a stored image reference to the object key it owns.
// External URLs and empty references report ok == false. Query parameters are
// stripped because objects are keyed on path only.
func AssetKey(image string) (string, bool) {
	if image == "" {
		return "", false
	}
	for _, scheme := range externalSchemes {
		if strings.HasPrefix(image, scheme) {
			return "", false
		}
	}
	if i := strings.IndexByte(image, '?'); i >= 0 {
		image = image[:i]
	}
	if image == "" {
		return "", false
	}
	return image, true
}

// DeleteUserImage deletes the object referenced by image when it is an internal key.
// It reports whether a delete was issued.
func DeleteUserImage(ctx context.Context, store Deleter, image string) (bool, error) {
	key, ok := AssetKey(image)
	if !ok || store == nil {
		return false, nil
	}
	if err := store.Delete(ctx, key); err != nil {
		return true, err
	}
	return true, nil
}
