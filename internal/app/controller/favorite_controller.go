package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matdori/matdori-backend/internal/app/service"
	apperrors "github.com/matdori/matdori-backend/internal/errors"
	"github.com/matdori/matdori-backend/internal/middleware"
)

type FavoriteController struct {
	favoriteService service.FavoriteService
}

// NewFavoriteController 좋아요 가게 컨트롤러 생성
func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{favoriteService: favoriteService}
}

type AddFavoriteStoreRequest struct {
	StoreIndex uint `json:"store_index" binding:"required"`
}

type FavoriteStoreResponse struct {
	FavoriteStoreID uint   `json:"favorite_store_id"`
	StoreID         uint   `json:"store_id"`
	Name            string `json:"name"`
	ImgURL          string `json:"img_url"`
}

// AddFavoriteStore 좋아요 가게 추가
// POST /users/:userIndex/favorite-store
func (ctrl *FavoriteController) AddFavoriteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req AddFavoriteStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "가게를 선택해주세요")
		return
	}

	favorite, err := ctrl.favoriteService.AddFavoriteStore(userID, req.StoreIndex)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "가게를 찾을 수 없습니다")
		case errors.Is(err, service.ErrFavoriteAlreadyExists):
			apperrors.Conflict(c, apperrors.FavoriteAlreadyExists, "이미 좋아요한 가게입니다")
		default:
			log.Error("Failed to add favorite store", err, map[string]interface{}{
				"user_id":  userID,
				"store_id": req.StoreIndex,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create favorite")
		}
		return
	}

	apperrors.Success(c, http.StatusCreated, gin.H{
		"favorite_store_id": favorite.ID,
	})
}

// ListFavoriteStores 좋아요 가게 목록 조회
// GET /users/:userIndex/favorite-stores
func (ctrl *FavoriteController) ListFavoriteStores(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	favorites, err := ctrl.favoriteService.ListFavoriteStores(userID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list favorite stores", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	resp := make([]FavoriteStoreResponse, 0, len(favorites))
	for _, f := range favorites {
		resp = append(resp, FavoriteStoreResponse{
			FavoriteStoreID: f.ID,
			StoreID:         f.StoreID,
			Name:            f.Store.Name,
			ImgURL:          f.Store.ImgURL,
		})
	}
	apperrors.Success(c, http.StatusOK, resp)
}

// RemoveFavoriteStore 좋아요 가게 삭제
// DELETE /users/:userIndex/favorite-stores/:favoriteStoreIndex
func (ctrl *FavoriteController) RemoveFavoriteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	favoriteID, ok := parseIDParam(c, "favoriteStoreIndex")
	if !ok {
		return
	}

	if err := ctrl.favoriteService.RemoveFavoriteStore(userID, favoriteID); err != nil {
		if errors.Is(err, service.ErrFavoriteNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "좋아요한 가게를 찾을 수 없습니다")
			return
		}
		log.Error("Failed to remove favorite store", err, map[string]interface{}{
			"user_id":     userID,
			"favorite_id": favoriteID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete favorite")
		return
	}

	apperrors.Success(c, http.StatusOK, nil)
}
