package service

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips any markup from user-supplied display strings
// (nicknames, titles, classroom names) before they are stored.
func sanitizeText(input string) string {
	return strings.TrimSpace(textPolicy.Sanitize(input))
}

// validationError folds a validator failure into the domain taxonomy while
// keeping the field-level detail in the message.
func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
