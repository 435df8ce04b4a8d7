package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"storefront_back_end/internal/logger"
)

// ErrNotImage est retourné quand le fichier envoyé n'est pas une image.
var ErrNotImage = errors.New("le fichier doit être une image")

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".avif": true,
}

// ImageStorage stocke les images produits et bannières dans un bucket MinIO.
type ImageStorage struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func NewImageStorage(client *minio.Client, bucket string, ttl time.Duration) *ImageStorage {
	return &ImageStorage{client: client, bucket: bucket, ttl: ttl}
}

// ObjectKey construit la clé "<prefix>/<uuid><ext>" d'un nouvel objet.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return strings.Trim(prefix, "/") + "/" + uuid.NewString() + ext
}

// CheckImage vérifie le type MIME déclaré et l'extension du fichier.
func CheckImage(contentType, filename string) error {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return ErrNotImage
	}
	if !allowedImageExt[strings.ToLower(path.Ext(filename))] {
		return ErrNotImage
	}
	return nil
}

// Upload envoie le fichier et retourne sa clé d'objet.
func (s *ImageStorage) Upload(ctx context.Context, prefix string, file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	if err := CheckImage(contentType, file.Filename); err != nil {
		return "", err
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := ObjectKey(prefix, file.Filename)
	_, err = s.client.PutObject(ctx, s.bucket, key, f, file.Size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload minio: %w", err)
	}

	logger.L().Infof("📤 Image envoyée : %s/%s", s.bucket, key)
	return key, nil
}

// PresignedURL retourne une URL GET signée, valable le temps configuré.
func (s *ImageStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.ttl, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *ImageStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
