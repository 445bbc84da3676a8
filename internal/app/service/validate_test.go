package service

import (
	"testing"

	"github.com/matdori/matdori-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
)

func TestValidateRating(t *testing.T) {
	type review struct {
		Score int `validate:"rating"`
	}

	tests := []struct {
		name    string
		score   int
		wantErr bool
	}{
		{"Below minimum", model.MinRating - 1, true},
		{"Minimum", model.MinRating, false},
		{"Maximum", model.MaxRating, false},
		{"Above maximum", model.MaxRating + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStruct(review{Score: tt.score})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}
