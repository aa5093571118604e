package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"clubfees/internal/billing"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, APIResponse{
		Status:  "success",
		Code:    http.StatusCreated,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	RespondErrorWithDetails(c, code, message, nil)
}

func RespondErrorWithDetails(c *gin.Context, code int, message string, details interface{}) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
		Data:    details,
	})
}

// RespondBindError reports a request that failed binding, listing each rejected field
// with the validation tag it failed.
func RespondBindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		RespondError(c, http.StatusBadRequest, ErrInvalidRequest.Error())
		return
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	RespondErrorWithDetails(c, http.StatusBadRequest, "validation failed", fields)
}

func statusFor(k billing.Kind) int {
	switch k {
	case billing.KindConfiguration:
		return http.StatusUnprocessableEntity
	case billing.KindValidation:
		return http.StatusBadRequest
	case billing.KindConflict, billing.KindPolicy:
		return http.StatusConflict
	case billing.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func HandleServiceError(c *gin.Context, err error) {
	kind := billing.KindOf(err)
	code := statusFor(kind)

	if code == http.StatusInternalServerError {
		zap.L().Named("http").Error("unhandled service error",
			zap.String("trace_id", traceID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		RespondError(c, code, "Internal server error")
		return
	}

	var details gin.H
	var be *billing.Error
	if errors.As(err, &be) && be.Field != "" {
		details = gin.H{"field": be.Field, "kind": kind.String()}
	} else {
		details = gin.H{"kind": kind.String()}
	}
	RespondErrorWithDetails(c, code, err.Error(), details)
}
