package agenda

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/javiermolinar/lifecoach/internal/calendar"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CreateRequest asks for a one-off entry on Date (today when empty).
type CreateRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Date     string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Start    string `json:"start" validate:"required"`
	End      string `json:"end" validate:"required"`
	Category string `json:"category" validate:"required,oneof=work meeting appointment workout meal reading sleep free_time"`
	Flexible *bool  `json:"flexible,omitempty"`
	Priority *int   `json:"priority,omitempty" validate:"omitempty,min=1,max=10"`
}

// TemplateRequest asks for a recurring entry. Templates are stored as given.
type TemplateRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Weekdays  string `json:"weekdays" validate:"required"` // "mon,wed,fri" or "1,3,5"
	ValidFrom string `json:"valid_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ValidTo   string `json:"valid_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Start     string `json:"start" validate:"required"`
	End       string `json:"end" validate:"required"`
	Category  string `json:"category" validate:"required,oneof=work meeting appointment workout meal reading sleep free_time"`
	Flexible  *bool  `json:"flexible,omitempty"`
	Priority  *int   `json:"priority,omitempty" validate:"omitempty,min=1,max=10"`
}

// Patch holds the fields to change on an entry. Nil fields are left alone.
type Patch struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Date     *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Start    *string `json:"start,omitempty"`
	End      *string `json:"end,omitempty"`
	Category *string `json:"category,omitempty" validate:"omitempty,oneof=work meeting appointment workout meal reading sleep free_time"`
	Flexible *bool   `json:"flexible,omitempty"`
	Priority *int    `json:"priority,omitempty" validate:"omitempty,min=1,max=10"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Date == nil && p.Start == nil && p.End == nil &&
		p.Category == nil && p.Flexible == nil && p.Priority == nil
}

// ListRequest selects entries in an inclusive date range.
type ListRequest struct {
	From  string `json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To    string `json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"`
}

// validateStruct checks validation tags and reports the first failure as a *calendar.ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &calendar.ValidationError{Field: fe.Field(), Err: errors.New(formatFieldError(fe))}
	}
	return err
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(e.Param(), " ", ", "))
	case "datetime":
		return "must be in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}
