package response_test

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summraize/summraize-backend/internal/http/response"
)

func TestStatusOKWithData(t *testing.T) {
	resp := response.StatusOKWithData(map[string]any{"credits": 100})
	assert.Equal(t, response.StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := response.Error("something broke")
	assert.Equal(t, response.StatusError, resp.Status)
	assert.Equal(t, "something broke", resp.Error)
}

func TestInsufficientCredits(t *testing.T) {
	resp := response.InsufficientCredits(42, 10)
	assert.Equal(t, response.StatusError, resp.Status)
	assert.Equal(t, "insufficient credits", resp.Error)
	assert.Equal(t, int64(42), resp.Required)
	assert.Equal(t, int64(10), resp.Available)
}

func TestValidationError(t *testing.T) {
	type req struct {
		Username string `validate:"required"`
		Text     string `validate:"required"`
	}
	err := validator.New().Struct(req{})
	require.Error(t, err)

	resp := response.ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, response.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Username is a required field")
	assert.Contains(t, resp.Error, "field Text is a required field")
}
