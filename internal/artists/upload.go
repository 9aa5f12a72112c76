// internal/artists/upload.go
// Image storage for portfolio items: local disk or S3

package artists

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned for uploads that are not JPEG, PNG, GIF or WebP
var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Storage stores uploaded images and returns their public URL
type Storage interface {
	Save(ctx context.Context, folder string, content io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// sniffImage reads the whole upload and checks its content type from the
// leading bytes rather than the client-supplied header
func sniffImage(content io.Reader) ([]byte, string, string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, "", "", ErrUnsupportedImage
	}
	return data, contentType, ext, nil
}

// LocalStorage writes files under a directory served at baseURL
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates disk storage. baseURL is where dir is served,
// e.g. http://localhost:8080/uploads.
func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *LocalStorage) Save(ctx context.Context, folder string, content io.Reader) (string, error) {
	data, _, ext, err := sniffImage(content)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(fullPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(fullPath, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return s.baseURL + "/" + path.Join(folder, filename), nil
}

// Delete removes a file previously returned by Save. URLs outside baseURL
// and files that are already gone are ignored.
func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return nil
	}

	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return fmt.Errorf("refusing to delete %q", url)
	}

	if err := os.Remove(filepath.Join(s.dir, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// S3Storage stores public-read objects in a bucket
type S3Storage struct {
	client  *s3.S3
	bucket  string
	baseURL string
}

// NewS3Storage creates S3 storage using the default AWS credential chain
func NewS3Storage(bucket, region string) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Storage{
		client:  s3.New(sess),
		bucket:  bucket,
		baseURL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region),
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, folder string, content io.Reader) (string, error) {
	data, contentType, ext, err := sniffImage(content)
	if err != nil {
		return "", err
	}

	key := path.Join(folder, uuid.NewString()+ext)
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return nil
	}

	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
