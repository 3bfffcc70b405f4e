// Package validation holds the process-wide validator shared by request
// bodies and configuration.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Instance returns the shared validator. Field errors carry the name the
// caller actually wrote: the `json` tag for request bodies, the
// `mapstructure` tag (the environment key) for configuration.
func Instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
	})
	return validate
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "mapstructure"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return f.Name
}

// Describe renders a validation error as "'field' failed on the 'tag' tag"
// clauses joined by "; ". Errors not produced by the validator are returned
// as their plain text.
func Describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("'%s' failed on the '%s=%s' tag", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("'%s' failed on the '%s' tag", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
