package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matdori/matdori-backend/internal/app/service"
	apperrors "github.com/matdori/matdori-backend/internal/errors"
	"github.com/matdori/matdori-backend/internal/middleware"
)

const deletedCommentText = "삭제된 댓글입니다"

type CommentController struct {
	commentService service.CommentService
	sessions       *middleware.SessionMiddleware
}

// NewCommentController 댓글 컨트롤러 생성
func NewCommentController(commentService service.CommentService, sessions *middleware.SessionMiddleware) *CommentController {
	return &CommentController{
		commentService: commentService,
		sessions:       sessions,
	}
}

type CreateCommentRequest struct {
	UserIndex uint   `json:"user_index" binding:"required"`
	Contents  string `json:"contents" binding:"required"`
}

type CommentResponse struct {
	CommentIndex uint      `json:"comment_index"`
	CreatedAt    time.Time `json:"created_at"`
	Contents     string    `json:"contents"`
	CheckDeleted bool      `json:"check_deleted"`
	UserIndex    uint      `json:"user_index"`
	Nickname     string    `json:"nickname"`
}

// CreateComment 댓글 작성 (body의 user_index 세션 확인)
// POST /jokbos/:jokboIndex/comment
func (ctrl *CommentController) CreateComment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	jokboID, ok := parseIDParam(c, "jokboIndex")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	if !ctrl.sessions.AuthorizeUser(c, req.UserIndex) {
		return
	}

	comment, err := ctrl.commentService.CreateComment(jokboID, req.UserIndex, req.Contents)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "댓글 내용을 확인해주세요")
		case errors.Is(err, service.ErrJokboNotFound):
			apperrors.NotFound(c, apperrors.JokboNotFound, "족보를 찾을 수 없습니다")
		default:
			log.Error("Failed to create comment", err, map[string]interface{}{
				"jokbo_id": jokboID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create comment")
		}
		return
	}

	apperrors.Success(c, http.StatusCreated, gin.H{
		"comment_index": comment.ID,
	})
}

// ListComments 댓글 목록 조회
// GET /jokbos/:jokboIndex/comments
func (ctrl *CommentController) ListComments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	jokboID, ok := parseIDParam(c, "jokboIndex")
	if !ok {
		return
	}

	comments, err := ctrl.commentService.ListComments(jokboID)
	if err != nil {
		if errors.Is(err, service.ErrJokboNotFound) {
			apperrors.NotFound(c, apperrors.JokboNotFound, "족보를 찾을 수 없습니다")
			return
		}
		log.Error("Failed to list comments", err, map[string]interface{}{
			"jokbo_id": jokboID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list comments")
		return
	}

	resp := make([]CommentResponse, 0, len(comments))
	for _, cm := range comments {
		contents := cm.Contents
		if cm.IsDeleted {
			contents = deletedCommentText
		}
		resp = append(resp, CommentResponse{
			CommentIndex: cm.ID,
			CreatedAt:    cm.CreatedAt,
			Contents:     contents,
			CheckDeleted: cm.IsDeleted,
			UserIndex:    cm.UserID,
			Nickname:     cm.User.Nickname,
		})
	}
	apperrors.Success(c, http.StatusOK, resp)
}
