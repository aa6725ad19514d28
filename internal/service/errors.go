package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNoSession       = errors.New("coach is not logged in")
	ErrSessionExpired  = errors.New("coach session expired")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrStudentNotFound = errors.New("student not found")
)

// ValidationError ошибка ввода, обнаруженная до обращения к API.
// Message готов к показу пользователю.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// fromValidator превращает первую ошибку validator в ValidationError
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return invalid(field, "обязательное поле")
	case "email":
		return invalid(field, "некорректный email")
	case "gtfield":
		return invalid(field, "окончание должно быть позже начала")
	case "min":
		return invalid(field, "слишком короткое значение")
	case "max":
		return invalid(field, "слишком длинное значение")
	case "len":
		return invalid(field, fmt.Sprintf("ожидается %s символа", fe.Param()))
	case "oneof":
		return invalid(field, "недопустимое значение")
	case "gt", "gte":
		return invalid(field, "значение должно быть положительным")
	default:
		return invalid(field, "некорректное значение")
	}
}

func newValidator(v *validator.Validate) *validator.Validate {
	if v != nil {
		return v
	}
	return validator.New()
}
