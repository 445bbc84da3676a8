package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/matdori/matdori-backend/config"
	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/internal/app/repository"
	"github.com/matdori/matdori-backend/internal/storage"
	"github.com/matdori/matdori-backend/pkg/logger"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound  = errors.New("store not found")
	ErrJokboNotFound  = errors.New("jokbo not found")
	ErrNotJokboOwner  = errors.New("jokbo belongs to another user")
	ErrStorageFailure = storage.ErrStorageFailure
)

const defaultUploadWorkers = 4

type CreateJokboInput struct {
	UserID            uint   `validate:"required"`
	StoreID           uint   `validate:"required"`
	TotalRating       int    `validate:"rating"`
	FlavorRating      int    `validate:"rating"`
	UnderPricedRating int    `validate:"rating"`
	CleanRating       int    `validate:"rating"`
	Title             string `validate:"required,max=100"`
	Contents          string `validate:"max=5000"`
}

// CreateJokboResult 저장된 족보와 저장하지 못한 이미지 인덱스 (lenient 정책에서만)
type CreateJokboResult struct {
	Jokbo        *model.Jokbo
	FailedImages []int
}

// OrphanRecorder 삭제 실패로 남은 첨부파일 집계
type OrphanRecorder interface {
	RecordOrphans(n int)
}

type JokboServiceConfig struct {
	UploadWorkers int
	UploadPolicy  string
	Orphans       OrphanRecorder
}

type JokboService interface {
	CreateJokbo(ctx context.Context, input CreateJokboInput, images []storage.Attachment) (*CreateJokboResult, error)
	GetJokbo(id uint) (*model.Jokbo, error)
	DeleteJokbo(ctx context.Context, userID, jokboID uint) error
	CountJokbos() (int64, error)
	CleanupOrphans(ctx context.Context, limit int) (int, error)
}

type jokboService struct {
	jokboRepo  repository.JokboRepository
	storeRepo  repository.StoreRepository
	orphanRepo repository.OrphanRepository
	store      storage.AttachmentStore
	workers    int
	atomic     bool
	orphans    OrphanRecorder
}

// NewJokboService 족보 서비스 생성
func NewJokboService(
	jokboRepo repository.JokboRepository,
	storeRepo repository.StoreRepository,
	orphanRepo repository.OrphanRepository,
	store storage.AttachmentStore,
	cfg JokboServiceConfig,
) JokboService {
	workers := cfg.UploadWorkers
	if workers <= 0 {
		workers = defaultUploadWorkers
	}
	return &jokboService{
		jokboRepo:  jokboRepo,
		storeRepo:  storeRepo,
		orphanRepo: orphanRepo,
		store:      store,
		workers:    workers,
		atomic:     cfg.UploadPolicy == config.UploadPolicyAtomic,
		orphans:    cfg.Orphans,
	}
}

// CreateJokbo 족보 작성 및 이미지 업로드
func (s *jokboService) CreateJokbo(ctx context.Context, input CreateJokboInput, images []storage.Attachment) (*CreateJokboResult, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	exists, err := s.storeRepo.Exists(input.StoreID)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.Warn("Jokbo creation failed: store not found", map[string]interface{}{
			"store_id": input.StoreID,
		})
		return nil, ErrStoreNotFound
	}

	jokbo := &model.Jokbo{
		UserID:            input.UserID,
		StoreID:           input.StoreID,
		TotalRating:       input.TotalRating,
		FlavorRating:      input.FlavorRating,
		UnderPricedRating: input.UnderPricedRating,
		CleanRating:       input.CleanRating,
		Title:             input.Title,
		Contents:          input.Contents,
	}
	if err := s.jokboRepo.Create(jokbo); err != nil {
		return nil, err
	}

	urls, failed, uploadErr := s.uploadAll(ctx, images)

	if s.atomic && uploadErr != nil {
		s.rollbackCreate(ctx, jokbo.ID, urls)
		return nil, fmt.Errorf("upload jokbo images: %w", uploadErr)
	}

	imgs := make([]model.JokboImg, 0, len(images))
	for i, url := range urls {
		if url == "" {
			continue
		}
		imgs = append(imgs, model.JokboImg{
			JokboID:  jokbo.ID,
			ImgURL:   url,
			Position: i,
		})
	}

	if len(imgs) > 0 {
		if err := s.jokboRepo.CreateImages(imgs); err != nil {
			s.rollbackCreate(ctx, jokbo.ID, urls)
			return nil, err
		}
	}
	jokbo.Images = imgs

	if len(failed) > 0 {
		logger.Warn("Jokbo created with missing images", map[string]interface{}{
			"jokbo_id":      jokbo.ID,
			"failed_images": failed,
			"stored_images": len(imgs),
		})
	}

	logger.Info("Jokbo created", map[string]interface{}{
		"jokbo_id": jokbo.ID,
		"user_id":  jokbo.UserID,
		"store_id": jokbo.StoreID,
		"images":   len(imgs),
	})
	return &CreateJokboResult{Jokbo: jokbo, FailedImages: failed}, nil
}

// uploadAll 이미지 동시 업로드. urls는 제출 순서를 유지하고 실패한 자리는 ""이다.
// atomic 모드에서는 첫 실패가 나머지를 취소한다.
func (s *jokboService) uploadAll(ctx context.Context, images []storage.Attachment) ([]string, []int, error) {
	urls := make([]string, len(images))
	errs := make([]error, len(images))
	if len(images) == 0 {
		return urls, nil, nil
	}

	var g *errgroup.Group
	if s.atomic {
		g, ctx = errgroup.WithContext(ctx)
	} else {
		g = new(errgroup.Group)
	}
	g.SetLimit(s.workers)

	for i, img := range images {
		g.Go(func() error {
			url, err := s.store.Upload(ctx, img)
			if err != nil {
				errs[i] = err
				if s.atomic {
					return err
				}
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	firstErr := g.Wait()

	var failed []int
	for i, err := range errs {
		if err != nil {
			failed = append(failed, i)
		}
	}
	if firstErr == nil && len(failed) > 0 {
		firstErr = errs[failed[0]]
	}
	return urls, failed, firstErr
}

func (s *jokboService) rollbackCreate(ctx context.Context, jokboID uint, urls []string) {
	if err := s.jokboRepo.Delete(jokboID); err != nil {
		logger.Error("Failed to roll back jokbo row", err, map[string]interface{}{
			"jokbo_id": jokboID,
		})
	}
	s.deleteAttachments(context.WithoutCancel(ctx), jokboID, urls)
}

// GetJokbo 족보 조회
func (s *jokboService) GetJokbo(id uint) (*model.Jokbo, error) {
	jokbo, err := s.jokboRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJokboNotFound
		}
		return nil, err
	}
	return jokbo, nil
}

// DeleteJokbo 족보 삭제 (작성자만). 댓글과 이미지 행을 함께 지운 뒤 스토리지에서 삭제하며,
// 스토리지 실패는 고아 첨부파일로 기록하고 반환하지 않는다.
func (s *jokboService) DeleteJokbo(ctx context.Context, userID, jokboID uint) error {
	jokbo, err := s.GetJokbo(jokboID)
	if err != nil {
		return err
	}
	if jokbo.UserID != userID {
		logger.Warn("Jokbo delete rejected: not owner", map[string]interface{}{
			"jokbo_id": jokboID,
			"user_id":  userID,
			"owner_id": jokbo.UserID,
		})
		return ErrNotJokboOwner
	}

	urls, err := s.jokboRepo.DeleteCascade(jokboID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJokboNotFound
		}
		return err
	}

	s.deleteAttachments(context.WithoutCancel(ctx), jokboID, urls)

	logger.Info("Jokbo deleted", map[string]interface{}{
		"jokbo_id": jokboID,
		"user_id":  userID,
		"images":   len(urls),
	})
	return nil
}

func (s *jokboService) deleteAttachments(ctx context.Context, jokboID uint, urls []string) {
	var errs error
	var orphans []model.OrphanedAttachment
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := s.store.Delete(ctx, url); err != nil {
			errs = multierr.Append(errs, err)
			orphans = append(orphans, model.OrphanedAttachment{
				URL:       url,
				LastError: err.Error(),
			})
		}
	}
	if errs == nil {
		return
	}

	logger.Warn("Some attachments could not be deleted", map[string]interface{}{
		"jokbo_id": jokboID,
		"failed":   len(multierr.Errors(errs)),
		"error":    errs.Error(),
	})

	if s.orphanRepo == nil {
		return
	}
	if err := s.orphanRepo.Create(orphans); err != nil {
		logger.Error("Failed to record orphaned attachments", err, map[string]interface{}{
			"jokbo_id": jokboID,
		})
		return
	}
	if s.orphans != nil {
		s.orphans.RecordOrphans(len(orphans))
	}
}

// CleanupOrphans 고아 첨부파일 삭제 재시도, 삭제한 개수 반환
func (s *jokboService) CleanupOrphans(ctx context.Context, limit int) (int, error) {
	if s.orphanRepo == nil {
		return 0, nil
	}

	batch, err := s.orphanRepo.FindBatch(limit)
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs error
	for _, orphan := range batch {
		if err := s.store.Delete(ctx, orphan.URL); err != nil {
			// 버킷 밖 URL은 재시도해도 소용없다
			if errors.Is(err, storage.ErrForeignURL) {
				errs = multierr.Append(errs, s.orphanRepo.Delete(orphan.ID))
				continue
			}
			errs = multierr.Append(errs, s.orphanRepo.MarkAttempt(orphan.ID, err.Error()))
			continue
		}
		if err := s.orphanRepo.Delete(orphan.ID); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	return removed, errs
}

// CountJokbos 전체 족보 수
func (s *jokboService) CountJokbos() (int64, error) {
	return s.jokboRepo.CountAll()
}
