package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/contoso-university-api/internal/models"
	"github.com/noah-isme/contoso-university-api/internal/repository"
	appErrors "github.com/noah-isme/contoso-university-api/pkg/errors"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = models.DateLayout

type unitOfWorkFactory interface {
	Begin() repository.UnitOfWork
}

func newSchoolValidator(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

func validateInput(validate *validator.Validate, input interface{}, what string) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+what+" payload")
	}
	fields := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, appErrors.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid "+what+" payload"), fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// saveError maps a SaveChanges failure to the typed error reported to callers.
func saveError(logger *zap.Logger, metrics *MetricsService, err error, notFound string, failure *appErrors.Error, op string) error {
	if errors.Is(err, repository.ErrRowNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	var commitErr *repository.CommitError
	if errors.As(err, &commitErr) {
		metrics.RecordSaveFailure(op)
		logger.Warn("save changes failed", zap.String("operation", op), zap.String("step", commitErr.Op), zap.Error(err))
		return appErrors.Wrap(err, failure.Code, failure.Status, failure.Message)
	}
	logger.Error("unexpected storage error", zap.String("operation", op), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+op)
}

// DeleteErrorMessage returns the notice shown on a delete confirmation that
// follows a failed delete.
func DeleteErrorMessage(saveChangesError bool) string {
	if !saveChangesError {
		return ""
	}
	return appErrors.ErrDeleteFailed.Message
}
