package request

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

type signUp struct {
	FirstName string  `form:"firstName" validate:"required"`
	Email     string  `form:"email" validate:"required,email"`
	Password  string  `form:"password" validate:"required,min=6"`
	Confirm   string  `form:"confirmPassword" validate:"eqfield=Password"`
	Capacity  float64 `form:"capacity" validate:"gt=0"`
	Role      string  `form:"role" validate:"oneof=ADMIN MECHANIC"`
}

func TestForm_Validate(t *testing.T) {
	f, err := ParseForm(postForm(url.Values{"email": {"nope"}}))
	require.NoError(t, err)

	ok := f.Validate(signUp{Email: f.String("email"), Password: "abc", Confirm: "abd", Role: "CEO"})
	assert.False(t, ok)
	assert.Equal(t, "This field is required.", f.Errors["firstName"])
	assert.Equal(t, "Enter a valid email address.", f.Errors["email"])
	assert.Equal(t, "Must be at least 6 characters.", f.Errors["password"])
	assert.Equal(t, "Does not match.", f.Errors["confirmPassword"])
	assert.Equal(t, "Must be greater than 0.", f.Errors["capacity"])
	assert.Equal(t, "Choose one of the listed options.", f.Errors["role"])
}

func TestForm_Validate_OK(t *testing.T) {
	f := NewForm(nil)
	ok := f.Validate(signUp{FirstName: "A", Email: "a@b.co", Password: "secret", Confirm: "secret", Capacity: 2, Role: "ADMIN"})
	assert.True(t, ok)
	assert.Empty(t, f.Errors)
}

func TestForm_Numbers(t *testing.T) {
	f := NewForm(url.Values{
		"year":    {" 2021 "},
		"rate":    {"850,50"},
		"bad":     {"12a"},
		"badRate": {"x"},
	})

	assert.Equal(t, 2021, f.Int("year"))
	assert.Equal(t, 850.5, f.Float("rate"))
	assert.Equal(t, 0, f.Int("missing"))
	f.Int("bad")
	f.Float("badRate")
	assert.Equal(t, "Enter a whole number.", f.Errors["bad"])
	assert.Equal(t, "Enter a number.", f.Errors["badRate"])
	assert.False(t, f.Valid())
}

func TestForm_Bool(t *testing.T) {
	f := NewForm(url.Values{"a": {"on"}, "b": {"true"}, "c": {"off"}})
	assert.True(t, f.Bool("a"))
	assert.True(t, f.Bool("b"))
	assert.False(t, f.Bool("c"))
	assert.False(t, f.Bool("d"))
}

func TestForm_AddErrorKeepsFirst(t *testing.T) {
	f := NewForm(nil)
	f.AddError("x", "first")
	f.AddError("x", "second")
	assert.Equal(t, "first", f.Errors["x"])
}

func TestForm_RawKeepsSpaces(t *testing.T) {
	f := NewForm(url.Values{"password": {" pw "}})
	assert.Equal(t, " pw ", f.Raw("password"))
	assert.Equal(t, "pw", f.String("password"))
}

func TestRequireIntID(t *testing.T) {
	id, err := RequireIntID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, s := range []string{"", "abc", "0", "-1"} {
		_, err := RequireIntID(s)
		assert.Error(t, err, s)
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/home"},
		{"/customer/profile", "/customer/profile"},
		{"/confirm-details?quote=abc", "/confirm-details?quote=abc"},
		{"https://evil.example", "/home"},
		{"//evil.example/x", "/home"},
		{"/\\evil.example", "/home"},
		{"relative", "/home"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeNext(tt.next, "/home"), tt.next)
	}
}
