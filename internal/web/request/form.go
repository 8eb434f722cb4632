package request

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxFormMemory bounds multipart parsing; larger parts spill to disk.
const maxFormMemory = 8 << 20

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldErrors maps form field names to a user-facing message.
type FieldErrors map[string]string

// Form wraps a parsed HTML form and collects field errors.
type Form struct {
	Values url.Values
	Errors FieldErrors
}

// ParseForm parses url-encoded or multipart form bodies.
func ParseForm(r *http.Request) (*Form, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	return &Form{Values: r.PostForm, Errors: FieldErrors{}}, nil
}

// NewForm builds a form from existing values, e.g. to pre-fill an edit page.
func NewForm(values url.Values) *Form {
	if values == nil {
		values = url.Values{}
	}
	return &Form{Values: values, Errors: FieldErrors{}}
}

func (f *Form) String(key string) string {
	return strings.TrimSpace(f.Values.Get(key))
}

// Raw returns the value untrimmed, for passwords.
func (f *Form) Raw(key string) string {
	return f.Values.Get(key)
}

// Int parses key as a whole number. Empty values are zero; anything else
// that does not parse records a field error.
func (f *Form) Int(key string) int {
	s := f.String(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f.AddError(key, "Enter a whole number.")
	}
	return n
}

// Float parses key as a decimal number, accepting a comma as decimal mark.
func (f *Form) Float(key string) float64 {
	s := strings.ReplaceAll(f.String(key), ",", ".")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.AddError(key, "Enter a number.")
	}
	return v
}

// Bool reports whether a checkbox was ticked.
func (f *Form) Bool(key string) bool {
	switch strings.ToLower(f.String(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// AddError records msg for key unless the field already has an error.
func (f *Form) AddError(key, msg string) {
	if _, ok := f.Errors[key]; !ok {
		f.Errors[key] = msg
	}
}

func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// Validate runs struct validation on v and merges the failures into the
// form's errors. It reports whether the form is valid overall.
func (f *Form) Validate(v any) bool {
	err := validate.Struct(v)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			f.AddError(fe.Field(), message(fe))
		}
	} else if err != nil {
		f.AddError("_form", "The form could not be checked.")
	}
	return f.Valid()
}

func message(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if isText {
			return fmt.Sprintf("Must be at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("Must be at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be %s or more.", fe.Param())
	case "eqfield":
		return "Does not match."
	case "oneof":
		return "Choose one of the listed options."
	case "numeric":
		return "Use digits only."
	case "alphanum":
		return "Use letters and digits only."
	case "datetime":
		return "Enter a date as YYYY-MM-DD."
	default:
		return "Invalid value."
	}
}

// RequireIntID parses a numeric path parameter.
func RequireIntID(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("missing required ID")
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

// SafeNext returns next when it is a local absolute path, otherwise fallback.
// It keeps sign-in redirects on this site.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return next
}
