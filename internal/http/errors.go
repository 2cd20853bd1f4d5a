package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"checkup-reservation/internal/domain"
	"checkup-reservation/internal/service"
)

const internalErrorMessage = "internal server error"

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Timestamp: time.Now().Format(time.RFC3339),
		Status:    status,
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}

// writeError answers 400 for client errors and a generic 500 for everything else.
func (h *Handler) writeError(c *gin.Context, err error) {
	if service.IsClientError(err) {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	_ = c.Error(err)
	h.logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("request failed")
	abortWithError(c, http.StatusInternalServerError, internalErrorMessage)
}

func (h *Handler) handlePanic(c *gin.Context, recovered any) {
	h.writeError(c, fmt.Errorf("panic: %v", recovered))
}

var registerOnce sync.Once

// registerValidators adds the checkupdate and timeslot tags to gin's validator
// and reports fields by their json names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("checkupdate", func(fl validator.FieldLevel) bool {
			return domain.ValidCheckupDate(fl.Field().String())
		})
		_ = v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
			return domain.ValidTimeSlot(fl.Field().String())
		})
	})
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "malformed request body"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "checkupdate":
		return service.ErrInvalidDate.Error()
	case "timeslot":
		return service.ErrInvalidTimeSlot.Error()
	default:
		return fe.Field() + " is invalid"
	}
}
