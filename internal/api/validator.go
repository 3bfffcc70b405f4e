package api

import (
	"fmt"

	app_errors "zezin-crm/client/internal/errors"
	"zezin-crm/client/internal/validation"
)

// validateRequest checks a decoded request body against its `validate` tags.
// Failures wrap app_errors.ErrValidation and name the offending JSON fields,
// e.g. "'message' failed on the 'required' tag".
func validateRequest(payload interface{}) error {
	if err := validation.Instance().Struct(payload); err != nil {
		return fmt.Errorf("%w: %s", app_errors.ErrValidation, validation.Describe(err))
	}
	return nil
}
