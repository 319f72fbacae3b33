package report

import (
	"errors"
	"strings"

	"github.com/go-playground/validator"
)

// Image is one uploaded image blob. Index is its position among all parts
// submitted under "images", including skipped ones.
type Image struct {
	Index    int
	Filename string
	MIMEType string
	Data     []byte
}

// Submission is the transient input of one generation request.
type Submission struct {
	Title       string `validate:"notblank"`
	Description string `validate:"notblank"`
	Style       string `validate:"notblank,oneof=professional student technical casual"`
	Images      []Image
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// NormalizeStyle lowercases and trims a style directive.
func NormalizeStyle(style string) string {
	return strings.ToLower(strings.TrimSpace(style))
}

// Validate checks the required text fields. It never looks at images.
func (s *Submission) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "notblank" {
			return ErrMissingFields
		}
	}
	return ErrInvalidStyle
}

// IsImageType reports whether a declared content type is an image format.
func IsImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
