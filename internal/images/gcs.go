package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient uses application default credentials when credsPath is empty.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

type GCSStore struct {
	Client *storage.Client
	Bucket string
	Prefix string
}

func (s *GCSStore) object(name string) string {
	return path.Join(s.Prefix, path.Base(name))
}

func PublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}

func (s *GCSStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	obj := s.object(name)
	wc := s.Client.Bucket(s.Bucket).Object(obj).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("upload %s: %w", obj, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", obj, err)
	}
	return PublicURL(s.Bucket, obj), nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) error {
	err := s.Client.Bucket(s.Bucket).Object(s.object(name)).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
