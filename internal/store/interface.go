package store

import (
	"context"
	"errors"

	"briefcast/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
)

type Store interface {
	SaveItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error)
	ListItems(ctx context.Context, limit int) ([]model.Item, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ItemStatus) error

	SaveDigest(ctx context.Context, digest *model.Digest) error
	GetDigest(ctx context.Context, feed, date string) (*model.Digest, error)
	ListDigests(ctx context.Context, limit int) ([]model.Digest, error)

	EnqueueFeed(ctx context.Context, slug string) error
	PopFeed(ctx context.Context) (string, error)
}
