package dataset

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrInvalidEIN is returned for identifiers that are not nine digits.
var ErrInvalidEIN = errors.New("dataset: invalid EIN")

// NormalizeEIN accepts "XX-XXXXXXX" or nine bare digits and returns the
// dashed form. An empty EIN stays empty.
func NormalizeEIN(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	digits := s
	if len(s) == 10 && s[2] == '-' {
		digits = s[:2] + s[3:]
	}
	if len(digits) != 9 || strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidEIN, s)
	}
	return digits[:2] + "-" + digits[2:], nil
}

// Validate checks field constraints and normalizes EINs in place.
func (ds *File) Validate() error {
	if err := validate.Struct(ds); err != nil {
		return formatValidationError(err)
	}
	var problems []string
	for i := range ds.Nodes {
		ein, err := NormalizeEIN(ds.Nodes[i].EIN)
		if err != nil {
			problems = append(problems, fmt.Sprintf("nodes[%d] (%s): %q", i, ds.Nodes[i].ID, ds.Nodes[i].EIN))
			continue
		}
		ds.Nodes[i].EIN = ein
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEIN, strings.Join(problems, "; "))
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid dataset: %s", strings.Join(msgs, "; "))
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "File.")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
