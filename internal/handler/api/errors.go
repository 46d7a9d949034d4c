package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"reservations-api/internal/domain/authz"
	"reservations-api/internal/handler/httperr"
	"reservations-api/internal/handler/middleware"
	"reservations-api/internal/pkg/errs"
	"reservations-api/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxLoggedStackLines = 12

var errMissingActor = errs.New("authenticated actor missing from context")

// FieldErrors is the detail body of a 422 response.
type FieldErrors struct {
	Fields map[string]string `json:"fields"`
}

var registerTagNames sync.Once

// RegisterValidatorTagNames makes validator report json/form names instead of
// Go struct field names.
func RegisterValidatorTagNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

// respondBindError turns a gin binding failure into 400 for malformed bodies
// and 422 for well-formed bodies with invalid fields.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if _, exists := fields[fe.Field()]; !exists {
				fields[fe.Field()] = validationMessage(fe)
			}
		}
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, errs.Mark(err, errs.ErrInvalidInput),
			"The given data was invalid", FieldErrors{Fields: fields})
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, errs.Mark(err, errs.ErrInvalidInput),
			"The given data was invalid", FieldErrors{Fields: map[string]string{
				typeErr.Field: "must be a " + typeErr.Type.String(),
			}})
		return
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, errs.Mark(err, errs.ErrInvalidInput),
			"The given data was invalid", FieldErrors{Fields: map[string]string{
				"query": fmt.Sprintf("%q is not a valid number", numErr.Num),
			}})
		return
	}

	msg := "Invalid request body"
	if errors.Is(err, io.EOF) {
		msg = "Request body is required"
	}
	httperr.AbortWithError(c, http.StatusBadRequest, errs.Mark(err, errs.ErrInvalidInput), msg, nil)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "latitude":
		return "must be between -90 and 90"
	case "longitude":
		return "must be between -180 and 180"
	default:
		return "is invalid"
	}
}

// respondError renders a use-case error. payload is only used for logging
// unexpected failures.
func (h *ReservationHandler) respondError(c *gin.Context, err error, payload any) {
	var verr *errs.ValidationError
	var denied *authz.DeniedError

	switch {
	case errs.As(err, &verr):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "The given data was invalid", FieldErrors{Fields: verr.Fields})
	case errs.As(err, &denied):
		httperr.AbortWithError(c, http.StatusForbidden, err, denied.Error(), map[string]string{"code": string(denied.Decision.Code)})
	case errs.Is(err, errs.ErrAuthorizationDenied):
		httperr.AbortWithError(c, http.StatusForbidden, err, "This action is unauthorized", nil)
	case errs.Is(err, errs.ErrNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
	case errs.Is(err, commands.ErrIdempotencyKeyReused):
		httperr.AbortWithError(c, http.StatusConflict, err, "Idempotency-Key was already used with a different request", nil)
	case errs.Is(err, errs.ErrConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "The reservation was modified by another request, please retry", nil)
	case errs.Is(err, errs.ErrInvalidInput):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, err.Error(), nil)
	default:
		respondInternal(c, err, payload, h.cfg.Debug)
	}
}

func respondInternal(c *gin.Context, err error, payload any, debug bool) {
	attrs := []any{
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"stack", errs.ExtractStackLines(err, maxLoggedStackLines),
	}
	if userID, ok := middleware.GetUserID(c); ok {
		attrs = append(attrs, "actor_id", userID)
	}
	if payload != nil {
		attrs = append(attrs, "payload", payload)
	}
	slog.ErrorContext(c.Request.Context(), "request failed", attrs...)

	var detail any
	if debug {
		detail = map[string]string{"error": err.Error()}
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", detail)
}

func actorOrAbort(c *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthenticated", nil)
		return authz.Actor{}, false
	}
	return actor, true
}
