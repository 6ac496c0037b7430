// Package objectstore keeps product images in Google Cloud Storage.
package objectstore

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-storefront/pkg/helpers"
)

type GCSImageStore struct {
	client *storage.Client
	bucket string
}

func NewGCSImageStore(client *storage.Client, bucket string) *GCSImageStore {
	return &GCSImageStore{client: client, bucket: bucket}
}

func (s *GCSImageStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, objectPath, contentType, r)
}

// Delete removes an object previously returned by Upload. URLs outside the
// bucket are left alone.
func (s *GCSImageStore) Delete(ctx context.Context, url string) error {
	objectPath, ok := ObjectPath(s.bucket, url)
	if !ok {
		return nil
	}
	return helpers.DeleteObject(ctx, s.client, s.bucket, objectPath)
}

// ObjectPath extracts the object name from a public URL of bucket.
func ObjectPath(bucket, url string) (string, bool) {
	prefix := helpers.PublicURL(bucket, "")
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(url, prefix)
	return p, p != ""
}
