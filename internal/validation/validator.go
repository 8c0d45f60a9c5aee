// Package validation проверка входящих DTO через validator/v10.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error ошибки по полям, ключ это имя поля из json-тега.
type Error struct {
	Fields map[string]string
}

// Error первая по алфавиту ошибка в виде "field message".
func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return "validation failed"
	}
	return keys[0] + " " + e.Fields[keys[0]]
}

// rgbColor цвет в виде #RRGGBB, ровно под колонку size:7.
var rgbColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validator обёртка над go-playground/validator.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// имена полей в ошибках берём из json-тегов
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	// hexcolor пропускает #RGB и #RRGGBBAA, нам нужен только #RRGGBB
	_ = v.RegisterValidation("rgbcolor", func(fl validator.FieldLevel) bool {
		return rgbColor.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate проверяет структуру, возвращает *Error.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, e := range fieldErrs {
		out.Fields[e.Field()] = friendlyMessage(e)
	}
	return out
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must not exceed " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "hexcolor", "rgbcolor":
		return "must be a hex color like #007bff"
	default:
		return "is invalid"
	}
}
