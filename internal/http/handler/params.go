package handler

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type loginParams struct {
	Username string `query:"username" validate:"required,max=255"`
	Password string `query:"password" validate:"required,max=255"`
	HWID     string `query:"hwid" validate:"required,max=255"`
}

type registerParams struct {
	Username string `query:"username" validate:"required,max=255"`
	Password string `query:"password" validate:"required,max=255"`
	License  string `query:"license" validate:"required,max=64"`
}

type usernameParams struct {
	Username string `query:"username" validate:"required,max=255"`
}

type passwordParams struct {
	Username string `query:"username" validate:"required,max=255"`
	Password string `query:"password" validate:"required,max=255"`
}

type noteParams struct {
	Username string `query:"username" validate:"required,max=255"`
	Note     string `query:"note" validate:"max=1024"`
}

// queryValue returns the first non-empty value among names.
func queryValue(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, n := range names {
		if v := q.Get(n); v != "" {
			return v
		}
	}
	return ""
}

func parseLogin(r *http.Request) (loginParams, error) {
	p := loginParams{
		Username: queryValue(r, "username"),
		Password: queryValue(r, "password"),
		HWID:     queryValue(r, "hwid"),
	}
	return p, validate.Struct(p)
}

func parseRegister(r *http.Request) (registerParams, error) {
	p := registerParams{
		Username: queryValue(r, "username"),
		Password: queryValue(r, "password"),
		License:  queryValue(r, "license", "license_key"),
	}
	return p, validate.Struct(p)
}

func parseUsername(r *http.Request) (usernameParams, error) {
	p := usernameParams{Username: queryValue(r, "username")}
	return p, validate.Struct(p)
}

func parsePassword(r *http.Request) (passwordParams, error) {
	p := passwordParams{
		Username: queryValue(r, "username"),
		Password: queryValue(r, "password", "new_password"),
	}
	return p, validate.Struct(p)
}

func parseNote(r *http.Request) (noteParams, error) {
	p := noteParams{
		Username: queryValue(r, "username"),
		Note:     r.URL.Query().Get("note"),
	}
	return p, validate.Struct(p)
}

// invalidFields lists the query parameters that failed validation.
func invalidFields(err error) []string {
	var out []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out = append(out, fe.Field())
		}
	}
	return out
}
