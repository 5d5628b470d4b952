package client

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/attendo/attendo/pkg/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	v.RegisterStructValidation(sessionWindowValidation, CreateSessionRequest{}, UpdateSessionRequest{})
	return v
}

// FieldError is one rejected request field, named by its JSON key.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned before any request is sent when a request
// record fails client-side validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns one "field message" line per rejected field, in field order.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Field+" "+f.Message)
	}
	return out
}

// Validate checks req against its validate tags.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate: %w", err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(errs))}
	for _, fe := range errs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "eqfield":
		return "must match " + lowerFirst(fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "after":
		return "must be after " + fe.Param()
	}
	return "is invalid"
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

// sessionWindowValidation requires both ends of the window and EndAt after StartAt.
func sessionWindowValidation(sl validator.StructLevel) {
	var start, end domain.Time
	switch req := sl.Current().Interface().(type) {
	case CreateSessionRequest:
		start, end = req.StartAt, req.EndAt
	case UpdateSessionRequest:
		start, end = req.StartAt, req.EndAt
	default:
		return
	}
	if start.IsZero() {
		sl.ReportError(start, "startAt", "StartAt", "required", "")
	}
	if end.IsZero() {
		sl.ReportError(end, "endAt", "EndAt", "required", "")
		return
	}
	if !start.IsZero() && !end.After(start.Time) {
		sl.ReportError(end, "endAt", "EndAt", "after", "startAt")
	}
}
