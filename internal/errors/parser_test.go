package errors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{"Nil error", nil, "", InternalServerError},
		{"Jokbo not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), "get jokbo", JokboNotFound},
		{"Store not found", gorm.ErrRecordNotFound, "find store", StoreNotFound},
		{"Unknown not found", gorm.ErrRecordNotFound, "", ResourceNotFound},
		{"Duplicate email", errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`), "sign up", AuthEmailAlreadyExists},
		{"Duplicate favorite", errors.New("UNIQUE constraint failed: store_favorites.user_id, store_favorites.store_id"), "favorite", FavoriteAlreadyExists},
		{"Gorm duplicated key", gorm.ErrDuplicatedKey, "", ResourceAlreadyExists},
		{"Missing store FK", errors.New(`violates foreign key constraint "fk_jokbos_store" (store_id)`), "create jokbo", StoreNotFound},
		{"Rating check", errors.New(`violates check constraint "chk_jokbos_flavor_rating"`), "create jokbo", JokboInvalidRating},
		{"Timeout", errors.New("dial tcp: i/o timeout"), "", InternalExternalAPI},
		{"Other", errors.New("boom"), "delete jokbo", InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestValidationFields(t *testing.T) {
	type input struct {
		StoreID      uint   `validate:"required"`
		Email        string `validate:"required,email"`
		FlavorRating int    `validate:"min=1,max=5"`
	}

	err := validator.New().Struct(input{Email: "nope", FlavorRating: 9})
	fields := ValidationFields(err)

	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "store_id")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "flavor_rating")

	assert.Nil(t, ValidationFields(errors.New("plain")))
}

func TestResponseEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Success(c, http.StatusOK, gin.H{"count": 3})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"count":3}}`, w.Body.String())
	})

	t.Run("Error", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Unauthorized(c, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"AUTH_UNAUTHORIZED","message":"로그인이 필요합니다"}`, w.Body.String())
	})
}
