package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/renjie/furnace-core/pkg/core/domain"
)

// ErrorResponse 标准错误响应
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     ErrorDetail `json:"error"`
	Timestamp string      `json:"timestamp"`
	Path      string      `json:"path"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// 错误码
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
	ErrCodeUnprocessableEntity = "UNPROCESSABLE_ENTITY"
	ErrCodeInternalServer      = "INTERNAL_SERVER_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
)

// RespondWithError 写出标准错误响应
func RespondWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success:   false,
		Error:     ErrorDetail{Code: code, Message: message},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      c.Request.URL.Path,
	})
}

// respondDomainError 将领域错误映射为 HTTP 状态码
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		RespondWithError(c, http.StatusUnsupportedMediaType, ErrCodeUnsupportedFormat, err.Error())
	case errors.Is(err, domain.ErrNotTabular):
		RespondWithError(c, http.StatusUnprocessableEntity, ErrCodeUnprocessableEntity, err.Error())
	default:
		RespondWithError(c, http.StatusInternalServerError, ErrCodeInternalServer, err.Error())
	}
}
