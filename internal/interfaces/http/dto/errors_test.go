package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeConcurrency, NormalizeErrorCode("CONCURRENCY_CONFLICT"))
	assert.Equal(t, ErrCodeClassifierUnavailable, NormalizeErrorCode("CLASSIFIER_UNAVAILABLE"))
	assert.Equal(t, ErrCodeIncompleteEntity, NormalizeErrorCode("INCOMPLETE_ENTITY"))
	// already normalized codes pass through
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
	// unknown codes are untouched
	assert.Equal(t, "SOMETHING_ELSE", NormalizeErrorCode("SOMETHING_ELSE"))
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus("NOT_FOUND"))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(ErrCodeConcurrency))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus("INVALID_STATE"))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("INCOMPLETE_ENTITY"))
	assert.Equal(t, http.StatusServiceUnavailable, GetHTTPStatus("CLASSIFIER_UNAVAILABLE"))
	assert.Equal(t, http.StatusBadGateway, GetHTTPStatus("ACTION_DELIVERY_FAILED"))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("NO_SUCH_CODE"))
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse([]ValidationDetail{{Field: "new_end_date", Message: "required"}}, "req-1")
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.NotNil(t, resp.Error.Details)
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 20, 41)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(41), meta.Total)
}
