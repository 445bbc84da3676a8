package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matdori/matdori-backend/internal/app/service"
	apperrors "github.com/matdori/matdori-backend/internal/errors"
	"github.com/matdori/matdori-backend/internal/middleware"
	"github.com/matdori/matdori-backend/internal/storage"
)

// 족보 하나에 첨부할 수 있는 최대 이미지 수
const maxImagesPerJokbo = 10

type JokboController struct {
	jokboService   service.JokboService
	maxUploadBytes int64
}

// NewJokboController 족보 컨트롤러 생성
func NewJokboController(jokboService service.JokboService, maxUploadBytes int64) *JokboController {
	return &JokboController{
		jokboService:   jokboService,
		maxUploadBytes: maxUploadBytes,
	}
}

type CreateJokboRequest struct {
	StoreIndex        uint   `form:"store_index" binding:"required"`
	TotalRating       int    `form:"total_rating" binding:"required"`
	FlavorRating      int    `form:"flavor_rating" binding:"required"`
	UnderPricedRating int    `form:"under_priced_rating" binding:"required"`
	CleanRating       int    `form:"clean_rating" binding:"required"`
	Title             string `form:"title" binding:"required"`
	Contents          string `form:"contents"`
}

type JokboResponse struct {
	JokboIndex        uint      `json:"jokbo_index"`
	StoreIndex        uint      `json:"store_index"`
	StoreName         string    `json:"store_name"`
	StoreImgURL       string    `json:"store_img_url"`
	Title             string    `json:"title"`
	Nickname          string    `json:"nickname"`
	Contents          string    `json:"contents"`
	TotalRating       int       `json:"total_rating"`
	FlavorRating      int       `json:"flavor_rating"`
	UnderPricedRating int       `json:"under_priced_rating"`
	CleanRating       int       `json:"clean_rating"`
	CreatedAt         time.Time `json:"created_at"`
	JokboImgURLList   []string  `json:"jokbo_img_url_list"`
}

// CreateJokbo 족보 작성 (multipart)
// POST /users/:userIndex/jokbo
func (ctrl *JokboController) CreateJokbo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req CreateJokboRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid jokbo request", map[string]interface{}{
			"error": err.Error(),
		})
		if fields := apperrors.ValidationFields(err); fields != nil {
			apperrors.RespondWithValidationError(c, fields)
			return
		}
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	images, err := ctrl.readImages(c)
	if err != nil {
		log.Warn("Failed to read jokbo images", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	result, err := ctrl.jokboService.CreateJokbo(c.Request.Context(), service.CreateJokboInput{
		UserID:            userID,
		StoreID:           req.StoreIndex,
		TotalRating:       req.TotalRating,
		FlavorRating:      req.FlavorRating,
		UnderPricedRating: req.UnderPricedRating,
		CleanRating:       req.CleanRating,
		Title:             req.Title,
		Contents:          req.Contents,
	}, images)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			if fields := apperrors.ValidationFields(err); fields != nil {
				apperrors.RespondWithValidationError(c, fields)
				return
			}
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "가게를 찾을 수 없습니다")
		case errors.Is(err, storage.ErrInvalidFileType):
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "jpg, png, gif, webp 이미지만 업로드할 수 있습니다")
		case errors.Is(err, storage.ErrFileTooLarge):
			apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.UploadFileTooLarge, "이미지 크기가 너무 큽니다")
		case errors.Is(err, service.ErrStorageFailure):
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.UploadFailed, "이미지 업로드에 실패했습니다")
		default:
			log.Error("Jokbo creation failed", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create jokbo")
		}
		return
	}

	failed := result.FailedImages
	if failed == nil {
		failed = []int{}
	}
	apperrors.Success(c, http.StatusCreated, gin.H{
		"jokbo_index":        result.Jokbo.ID,
		"jokbo_img_url_list": result.Jokbo.ImageURLs(),
		"failed_images":      failed,
	})
}

// readImages "images" 파트를 읽는다. 한도를 넘는 파일은 limit+1 바이트까지만 읽어
// 스토리지가 용량 초과로 거절하게 한다.
func (ctrl *JokboController) readImages(c *gin.Context) ([]storage.Attachment, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	files := form.File["images"]
	if len(files) > maxImagesPerJokbo {
		return nil, fmt.Errorf("이미지는 최대 %d장까지 첨부할 수 있습니다", maxImagesPerJokbo)
	}

	images := make([]storage.Attachment, 0, len(files))
	for _, fh := range files {
		data, err := ctrl.readFile(fh)
		if err != nil {
			return nil, err
		}
		images = append(images, storage.Attachment{Filename: fh.Filename, Data: data})
	}
	return images, nil
}

func (ctrl *JokboController) readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if ctrl.maxUploadBytes > 0 {
		r = io.LimitReader(f, ctrl.maxUploadBytes+1)
	}
	return io.ReadAll(r)
}

// GetJokbo 족보 조회
// GET /jokbos/:jokboIndex
func (ctrl *JokboController) GetJokbo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	jokboID, ok := parseIDParam(c, "jokboIndex")
	if !ok {
		return
	}

	jokbo, err := ctrl.jokboService.GetJokbo(jokboID)
	if err != nil {
		if errors.Is(err, service.ErrJokboNotFound) {
			apperrors.NotFound(c, apperrors.JokboNotFound, "족보를 찾을 수 없습니다")
			return
		}
		log.Error("Failed to get jokbo", err, map[string]interface{}{
			"jokbo_id": jokboID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get jokbo")
		return
	}

	apperrors.Success(c, http.StatusOK, JokboResponse{
		JokboIndex:        jokbo.ID,
		StoreIndex:        jokbo.StoreID,
		StoreName:         jokbo.Store.Name,
		StoreImgURL:       jokbo.Store.ImgURL,
		Title:             jokbo.Title,
		Nickname:          jokbo.User.Nickname,
		Contents:          jokbo.Contents,
		TotalRating:       jokbo.TotalRating,
		FlavorRating:      jokbo.FlavorRating,
		UnderPricedRating: jokbo.UnderPricedRating,
		CleanRating:       jokbo.CleanRating,
		CreatedAt:         jokbo.CreatedAt,
		JokboImgURLList:   jokbo.ImageURLs(),
	})
}

// DeleteJokbo 족보 삭제 (작성자만)
// DELETE /users/:userIndex/jokbos/:jokboIndex
func (ctrl *JokboController) DeleteJokbo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	jokboID, ok := parseIDParam(c, "jokboIndex")
	if !ok {
		return
	}

	if err := ctrl.jokboService.DeleteJokbo(c.Request.Context(), userID, jokboID); err != nil {
		switch {
		case errors.Is(err, service.ErrJokboNotFound):
			apperrors.NotFound(c, apperrors.JokboNotFound, "족보를 찾을 수 없습니다")
		case errors.Is(err, service.ErrNotJokboOwner):
			apperrors.Forbidden(c, apperrors.AuthzOwnerOnly, "작성자만 삭제할 수 있습니다")
		default:
			log.Error("Failed to delete jokbo", err, map[string]interface{}{
				"jokbo_id": jokboID,
				"user_id":  userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete jokbo")
		}
		return
	}

	apperrors.Success(c, http.StatusOK, nil)
}

// CountJokbos 전체 족보 수
// GET /jokbo-count
func (ctrl *JokboController) CountJokbos(c *gin.Context) {
	count, err := ctrl.jokboService.CountJokbos()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to count jokbos", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	apperrors.Success(c, http.StatusOK, gin.H{"count": count})
}
