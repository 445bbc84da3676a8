package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/matdori/matdori-backend/config"
	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/internal/app/repository"
	"github.com/matdori/matdori-backend/internal/db"
	"github.com/matdori/matdori-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type jokboFixture struct {
	db      *gorm.DB
	svc     JokboService
	files   *fakeAttachmentStore
	orphans repository.OrphanRepository
	metric  *countingOrphans
	user    *model.User
	store   *model.Store
}

func setupJokboServiceTest(t *testing.T, policy string) *jokboFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	files := newFakeAttachmentStore()
	orphanRepo := repository.NewOrphanRepository(testDB)
	metric := &countingOrphans{}
	svc := NewJokboService(
		repository.NewJokboRepository(testDB),
		repository.NewStoreRepository(testDB),
		orphanRepo,
		files,
		JokboServiceConfig{UploadWorkers: 2, UploadPolicy: policy, Orphans: metric},
	)

	return &jokboFixture{
		db:      testDB,
		svc:     svc,
		files:   files,
		orphans: orphanRepo,
		metric:  metric,
		user:    createTestUser(t, testDB, "writer@example.com"),
		store:   createTestStore(t, testDB, "학교앞 국밥"),
	}
}

func (f *jokboFixture) input() CreateJokboInput {
	return CreateJokboInput{
		UserID:            f.user.ID,
		StoreID:           f.store.ID,
		TotalRating:       4,
		FlavorRating:      5,
		UnderPricedRating: 3,
		CleanRating:       4,
		Title:             "국밥 맛집",
		Contents:          "든든합니다",
	}
}

func images(names ...string) []storage.Attachment {
	out := make([]storage.Attachment, 0, len(names))
	for _, n := range names {
		out = append(out, storage.Attachment{Filename: n, Data: []byte("img-" + n)})
	}
	return out
}

func TestJokboService_CreateJokbo(t *testing.T) {
	f := setupJokboServiceTest(t, config.UploadPolicyLenient)
	defer db.CleanupTestDB(f.db)
	ctx := context.Background()

	t.Run("All uploads succeed in submission order", func(t *testing.T) {
		names := []string{"a.png", "b.png", "c.png", "d.png", "e.png"}
		result, err := f.svc.CreateJokbo(ctx, f.input(), images(names...))
		require.NoError(t, err)
		assert.Empty(t, result.FailedImages)

		stored, err := f.svc.GetJokbo(result.Jokbo.ID)
		require.NoError(t, err)
		urls := stored.ImageURLs()
		require.Len(t, urls, len(names))
		for i, name := range names {
			assert.Contains(t, urls[i], name)
		}
	})

	t.Run("No images", func(t *testing.T) {
		result, err := f.svc.CreateJokbo(ctx, f.input(), nil)
		require.NoError(t, err)

		stored, err := f.svc.GetJokbo(result.Jokbo.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Images)
	})

	t.Run("Unknown store", func(t *testing.T) {
		in := f.input()
		in.StoreID = 9999
		_, err := f.svc.CreateJokbo(ctx, in, images("a.png"))
		assert.ErrorIs(t, err, ErrStoreNotFound)
	})
}

func TestJokboService_CreateJokboValidation(t *testing.T) {
	f := setupJokboServiceTest(t, config.UploadPolicyLenient)
	defer db.CleanupTestDB(f.db)

	tests := []struct {
		name   string
		mutate func(*CreateJokboInput)
	}{
		{"Rating below range", func(in *CreateJokboInput) { in.TotalRating = 0 }},
		{"Rating above range", func(in *CreateJokboInput) { in.CleanRating = 6 }},
		{"Missing title", func(in *CreateJokboInput) { in.Title = "" }},
		{"Missing store", func(in *CreateJokboInput) { in.StoreID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input()
			tt.mutate(&in)

			_, err := f.svc.CreateJokbo(context.Background(), in, images("a.png"))
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, f.files.storedCount(), "nothing uploaded on invalid input")
		})
	}

	count, err := f.svc.CountJokbos()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestJokboService_CreateJokboPartialFailure(t *testing.T) {
	f := setupJokboServiceTest(t, config.UploadPolicyLenient)
	defer db.CleanupTestDB(f.db)
	f.files.failUpload["b.png"] = true

	result, err := f.svc.CreateJokbo(context.Background(), f.input(), images("a.png", "b.png", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, result.FailedImages)

	stored, err := f.svc.GetJokbo(result.Jokbo.ID)
	require.NoError(t, err)
	urls := stored.ImageURLs()
	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "a.png")
	assert.Contains(t, urls[1], "c.png")
}

func TestJokboService_CreateJokboAtomic(t *testing.T) {
	f := setupJokboServiceTest(t, config.UploadPolicyAtomic)
	defer db.CleanupTestDB(f.db)
	f.files.failUpload["b.png"] = true

	result, err := f.svc.CreateJokbo(context.Background(), f.input(), images("a.png", "b.png", "c.png"))
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Nil(t, result)

	count, err := f.svc.CountJokbos()
	require.NoError(t, err)
	assert.Zero(t, count, "jokbo row rolled back")
	assert.Zero(t, f.files.storedCount(), "uploaded blobs removed")
}

func TestJokboService_DeleteJokbo(t *testing.T) {
	f := setupJokboServiceTest(t, config.UploadPolicyLenient)
	defer db.CleanupTestDB(f.db)
	ctx := context.Background()

	result, err := f.svc.CreateJokbo(ctx, f.input(), images("a.png", "b.png"))
	require.NoError(t, err)
	jokboID := result.Jokbo.ID
	urls := result.Jokbo.ImageURLs()

	comments := NewCommentService(repository.NewCommentRepository(f.db), repository.NewJokboRepository(f.db))
	_, err = comments.CreateComment(jokboID, f.user.ID, "맛있어요")
	require.NoError(t, err)

	t.Run("Other user is rejected", func(t *testing.T) {
		other := createTestUser(t, f.db, "other@example.com")
		err := f.svc.DeleteJokbo(ctx, other.ID, jokboID)
		assert.ErrorIs(t, err, ErrNotJokboOwner)

		_, err = f.svc.GetJokbo(jokboID)
		assert.NoError(t, err)
		assert.Empty(t, f.files.deletedURLs())
	})

	t.Run("Owner deletes", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteJokbo(ctx, f.user.ID, jokboID))

		_, err := f.svc.GetJokbo(jokboID)
		assert.ErrorIs(t, err, ErrJokboNotFound)
		_, err = comments.ListComments(jokboID)
		assert.ErrorIs(t, err, ErrJokboNotFound)

		var left int64
		require.NoError(t, f.db.Model(&model.JokboComment{}).Where("jokbo_id = ?", jokboID).Count(&left).Error)
		assert.Zero(t, left)
		assert.ElementsMatch(t, urls, f.files.deletedURLs())
	})

	t.Run("Missing jokbo", func(t *testing.T) {
		err := f.svc.DeleteJokbo(ctx, f.user.ID, jokboID)
		assert.ErrorIs(t, err, ErrJokboNotFound)
	})
}

func TestJokboService_DeleteJokboStorageFailure(t *testing.T) {
	f := setupJokboServiceTest(t, config.UploadPolicyLenient)
	defer db.CleanupTestDB(f.db)
	ctx := context.Background()

	result, err := f.svc.CreateJokbo(ctx, f.input(), images("a.png", "b.png", "c.png"))
	require.NoError(t, err)
	urls := result.Jokbo.ImageURLs()
	f.files.failDelete[urls[0]] = true
	f.files.failDelete[urls[2]] = true

	require.NoError(t, f.svc.DeleteJokbo(ctx, f.user.ID, result.Jokbo.ID))

	_, err = f.svc.GetJokbo(result.Jokbo.ID)
	assert.ErrorIs(t, err, ErrJokboNotFound)
	assert.ElementsMatch(t, urls, f.files.deletedURLs(), "every attachment is attempted")

	orphans, err := f.orphans.FindBatch(10)
	require.NoError(t, err)
	require.Len(t, orphans, 2)
	assert.Equal(t, 2, f.metric.n)

	t.Run("Sweep retries orphans", func(t *testing.T) {
		delete(f.files.failDelete, urls[0])

		removed, err := f.svc.CleanupOrphans(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		left, err := f.orphans.FindBatch(10)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, urls[2], left[0].URL)
		assert.Equal(t, 1, left[0].Attempts)
	})
}

func TestJokboService_CountJokbos(t *testing.T) {
	f := setupJokboServiceTest(t, config.UploadPolicyLenient)
	defer db.CleanupTestDB(f.db)

	for i := 0; i < 3; i++ {
		in := f.input()
		in.Title = fmt.Sprintf("족보 %d", i)
		_, err := f.svc.CreateJokbo(context.Background(), in, nil)
		require.NoError(t, err)
	}

	count, err := f.svc.CountJokbos()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
