package service

import (
	"errors"
	"strings"

	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/matdori/matdori-backend/internal/app/repository"
	"github.com/matdori/matdori-backend/pkg/logger"
	"gorm.io/gorm"
)

const maxCommentLength = 1000

type CommentService interface {
	CreateComment(jokboID, userID uint, contents string) (*model.JokboComment, error)
	ListComments(jokboID uint) ([]model.JokboComment, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	jokboRepo   repository.JokboRepository
}

// NewCommentService 댓글 서비스 생성
func NewCommentService(
	commentRepo repository.CommentRepository,
	jokboRepo repository.JokboRepository,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		jokboRepo:   jokboRepo,
	}
}

// CreateComment 댓글 작성
func (s *commentService) CreateComment(jokboID, userID uint, contents string) (*model.JokboComment, error) {
	contents = strings.TrimSpace(contents)
	if contents == "" || len([]rune(contents)) > maxCommentLength {
		return nil, ErrInvalidInput
	}

	if err := s.ensureJokbo(jokboID); err != nil {
		return nil, err
	}

	comment := &model.JokboComment{
		JokboID:  jokboID,
		UserID:   userID,
		Contents: contents,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		// 작성 도중 족보가 삭제된 경우
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrJokboNotFound
		}
		return nil, err
	}

	logger.Info("Comment created", map[string]interface{}{
		"comment_id": comment.ID,
		"jokbo_id":   jokboID,
		"user_id":    userID,
	})
	return comment, nil
}

// ListComments 족보별 댓글 목록 조회
func (s *commentService) ListComments(jokboID uint) ([]model.JokboComment, error) {
	if err := s.ensureJokbo(jokboID); err != nil {
		return nil, err
	}
	return s.commentRepo.FindByJokboID(jokboID)
}

func (s *commentService) ensureJokbo(jokboID uint) error {
	if _, err := s.jokboRepo.FindByID(jokboID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJokboNotFound
		}
		return err
	}
	return nil
}
