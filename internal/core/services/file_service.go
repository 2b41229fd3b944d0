package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"estatecrm/internal/adapters/persistence/repositories"
	"estatecrm/internal/core/domain"

	"github.com/google/uuid"
)

// ObjectStore abstracts the object storage backend. Bytes are only ever
// served back through Download, never via public bucket URLs.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

// FileService implements the two-step file protocol: binary upload to the
// object store under a generated key, then a metadata record insert
// referencing that key.
type FileService struct {
	store        ObjectStore
	resourceRepo repositories.ResourceRepository
}

// NewFileService creates a new file service
func NewFileService(store ObjectStore, resourceRepo repositories.ResourceRepository) *FileService {
	return &FileService{
		store:        store,
		resourceRepo: resourceRepo,
	}
}

// UploadResult references the stored object and, for documents, its
// metadata record
type UploadResult struct {
	Key      string                 `json:"key"`
	Document map[string]interface{} `json:"document,omitempty"`
}

// Upload stores the file bytes under a generated key. Document uploads also
// insert a metadata row owned by the caller; if that insert fails the object
// is removed again so no orphan bytes remain.
func (s *FileService) Upload(ctx context.Context, actor *domain.Actor, kind, filename, contentType string, size int64, body io.Reader) (*UploadResult, error) {
	if kind == "" {
		kind = "document"
	}
	if kind != "document" && kind != "avatar" {
		return nil, domain.ErrInvalidInput
	}

	key := kind + "s/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
	if err := s.store.Put(ctx, key, contentType, body); err != nil {
		return nil, err
	}

	if kind != "document" {
		return &UploadResult{Key: key}, nil
	}

	now := time.Now()
	fields := map[string]interface{}{
		"id":           uuid.NewString(),
		"name":         path.Base(filename),
		"object_key":   key,
		"content_type": contentType,
		"size":         size,
		"created_by":   actor.ID,
		"created_at":   now,
		"updated_at":   now,
	}
	if err := s.resourceRepo.Insert(ctx, "documents", fields); err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, err
	}

	return &UploadResult{Key: key, Document: fields}, nil
}

// Download proxies object bytes through the API. Document keys are gated by
// the caller's scope over the metadata row; a key outside that scope is
// indistinguishable from a missing one.
func (s *FileService) Download(ctx context.Context, actor *domain.Actor, key string) (io.ReadCloser, string, error) {
	if strings.HasPrefix(key, "documents/") {
		def, _ := resourceByName("documents")
		scope, err := scopeFor(actor, def)
		if err != nil {
			return nil, "", err
		}
		rows, _, err := s.resourceRepo.List(ctx, &repositories.ListQuery{
			Table:   def.Table,
			Filters: map[string]interface{}{"object_key": key},
			Scope:   scope,
			Limit:   1,
		})
		if err != nil {
			return nil, "", err
		}
		if len(rows) == 0 {
			return nil, "", domain.ErrNotFound
		}
	} else if !strings.HasPrefix(key, "avatars/") {
		return nil, "", domain.ErrNotFound
	}

	rc, contentType, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", err
	}
	return rc, contentType, nil
}
