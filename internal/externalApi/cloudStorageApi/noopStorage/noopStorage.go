// Package noopStorage stands in for the cloud storage when no credentials are configured.
package noopStorage

import (
	"context"
	"errors"
	"io"
)

var ErrNotConfigured = errors.New("error cloud storage is not configured")

type NoopStorage struct{}

func New() *NoopStorage {
	return &NoopStorage{}
}

func (NoopStorage) UploadFile(_ context.Context, _ io.Reader, _ string) (string, error) {
	return "", ErrNotConfigured
}

func (NoopStorage) DeleteOldFiles(_ context.Context) error {
	return nil
}
