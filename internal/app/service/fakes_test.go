package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/internal/app/repository"
	"github.com/matdori/matdori-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu    sync.Mutex
	sent  map[string]string
	err   error
	calls int
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: map[string]string{}}
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.sent[email] = code
	return nil
}

func (m *fakeMailer) lastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[email]
}

// fakeAttachmentStore fails uploads whose filename is listed in failUpload.
type fakeAttachmentStore struct {
	mu         sync.Mutex
	seq        int
	objects    map[string][]byte
	deleted    []string
	failUpload map[string]bool
	failDelete map[string]bool
}

func newFakeAttachmentStore() *fakeAttachmentStore {
	return &fakeAttachmentStore{
		objects:    map[string][]byte{},
		failUpload: map[string]bool{},
		failDelete: map[string]bool{},
	}
}

func (s *fakeAttachmentStore) Upload(ctx context.Context, a storage.Attachment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", storage.ErrStorageFailure, err)
	}
	if s.failUpload[a.Filename] {
		return "", fmt.Errorf("%w: rejected %s", storage.ErrStorageFailure, a.Filename)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	url := fmt.Sprintf("https://bucket.test/jokbos/%d-%s", s.seq, a.Filename)
	s.objects[url] = a.Data
	return url, nil
}

func (s *fakeAttachmentStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	if s.failDelete[url] {
		return fmt.Errorf("%w: delete %s", storage.ErrStorageFailure, url)
	}
	delete(s.objects, url)
	return nil
}

func (s *fakeAttachmentStore) deletedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *fakeAttachmentStore) storedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type countingOrphans struct {
	mu sync.Mutex
	n  int
}

func (c *countingOrphans) RecordOrphans(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n += n
}

func createTestUser(t *testing.T, conn *gorm.DB, email string) *model.User {
	user := &model.User{Email: email, PasswordHash: "hash", Nickname: "맛도리0000", EmailVerified: true}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func createTestStore(t *testing.T, conn *gorm.DB, name string) *model.Store {
	store := &model.Store{Name: name, Category: "한식"}
	require.NoError(t, conn.Create(store).Error)
	return store
}

var errBoom = errors.New("boom")

// flakyUserRepo fails the next failCreate / failMarkVerified calls with errBoom.
type flakyUserRepo struct {
	repository.UserRepository
	mu               sync.Mutex
	failCreate       int
	failMarkVerified int
}

func (r *flakyUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	if r.failCreate > 0 {
		r.failCreate--
		r.mu.Unlock()
		return errBoom
	}
	r.mu.Unlock()
	return r.UserRepository.Create(user)
}

func (r *flakyUserRepo) MarkVerified(email string, at time.Time) (bool, error) {
	r.mu.Lock()
	if r.failMarkVerified > 0 {
		r.failMarkVerified--
		r.mu.Unlock()
		return false, errBoom
	}
	r.mu.Unlock()
	return r.UserRepository.MarkVerified(email, at)
}
