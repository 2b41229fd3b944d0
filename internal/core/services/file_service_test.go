package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"estatecrm/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjectStore keeps object bytes in a map
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	// putErr / insert failures are simulated by the resource repo
	putErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeObjectStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	if s.putErr != nil {
		return s.putErr
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = raw
	s.types[key] = contentType
	return nil
}

func (s *fakeObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.objects[key]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), s.types[key], nil
}

func (s *fakeObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func newTestFileService() (*FileService, *fakeObjectStore, *fakeResourceRepo) {
	store := newFakeObjectStore()
	repo := newFakeResourceRepo()
	return NewFileService(store, repo), store, repo
}

func TestFileService_UploadDocument(t *testing.T) {
	svc, store, repo := newTestFileService()
	ctx := context.Background()

	result, err := svc.Upload(ctx, mgrActor, "document", "contract.PDF", "application/pdf", 4, strings.NewReader("data"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Key, "documents/"))
	assert.True(t, strings.HasSuffix(result.Key, ".pdf"))
	require.NotNil(t, result.Document)
	assert.Equal(t, "contract.PDF", result.Document["name"])
	assert.Equal(t, mgrActor.ID, result.Document["created_by"])

	// Bytes landed in the store, metadata in the table
	assert.Contains(t, store.objects, result.Key)
	rows := repo.rows["documents"]
	require.Len(t, rows, 1)
	assert.Equal(t, result.Key, rows[0]["object_key"])
}

func TestFileService_UploadAvatar_NoMetadata(t *testing.T) {
	svc, _, repo := newTestFileService()

	result, err := svc.Upload(context.Background(), mgrActor, "avatar", "me.png", "image/png", 4, strings.NewReader("data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Key, "avatars/"))
	assert.Nil(t, result.Document)
	assert.Empty(t, repo.rows["documents"])
}

func TestFileService_Upload_UnknownKind(t *testing.T) {
	svc, _, _ := newTestFileService()

	_, err := svc.Upload(context.Background(), mgrActor, "backup", "x.bin", "application/octet-stream", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFileService_DownloadDocument_Scoped(t *testing.T) {
	svc, _, _ := newTestFileService()
	ctx := context.Background()

	result, err := svc.Upload(ctx, mgrActor, "document", "contract.pdf", "application/pdf", 4, strings.NewReader("data"))
	require.NoError(t, err)

	// The owner downloads their document
	rc, contentType, err := svc.Download(ctx, mgrActor, result.Key)
	require.NoError(t, err)
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "data", string(raw))
	assert.Equal(t, "application/pdf", contentType)

	// Another manager's key reads as missing
	other := &domain.Actor{ID: "mg-2", Role: domain.RoleManager}
	_, _, err = svc.Download(ctx, other, result.Key)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// An unscoped role downloads anything
	_, _, err = svc.Download(ctx, superActor, result.Key)
	assert.NoError(t, err)
}

func TestFileService_Download_UnknownPrefix(t *testing.T) {
	svc, store, _ := newTestFileService()
	store.objects["secrets/key.pem"] = []byte("nope")

	_, _, err := svc.Download(context.Background(), superActor, "secrets/key.pem")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
