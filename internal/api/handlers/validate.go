package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their query/json name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// FieldError describes one rejected request field
type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// requestError carries field errors back to the client as a 400
type requestError struct {
	fields []FieldError
}

func (e *requestError) Error() string {
	parts := make([]string, len(e.fields))
	for i, f := range e.fields {
		parts[i] = f.Message
	}
	return strings.Join(parts, "; ")
}

// bindQuery applies `default` tags, fills dst from the URL query (`query`
// tags) and validates the result. Values sent by the client win over defaults.
func bindQuery(r *http.Request, dst interface{}) error {
	if err := applyDefaults(dst); err != nil {
		return err
	}
	if err := decodeQuery(r.URL.Query(), dst); err != nil {
		return err
	}
	return finish(r, dst)
}

// bindJSON applies defaults, decodes the body into dst and validates
func bindJSON(r *http.Request, dst interface{}) error {
	if err := applyDefaults(dst); err != nil {
		return err
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &requestError{fields: []FieldError{{Code: "ERR_BODY", Field: "body", Message: fmt.Sprintf("invalid JSON body: %v", err)}}}
	}
	return finish(r, dst)
}

func applyDefaults(dst interface{}) error {
	if err := defaults.Set(dst); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	return nil
}

func finish(r *http.Request, dst interface{}) error {
	if err := validate.StructCtx(r.Context(), dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		out := make([]FieldError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, FieldError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
		return &requestError{fields: out}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// decodeQuery sets string, int, float and bool fields tagged `query`
func decodeQuery(values url.Values, dst interface{}) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.New("decodeQuery: dst must be a pointer to a struct")
	}
	v = v.Elem()
	t := v.Type()

	var fieldErrs []FieldError
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("query")
		raw := strings.TrimSpace(values.Get(name))
		if name == "" || raw == "" {
			continue
		}

		field := v.Field(i)
		var err error
		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Int, reflect.Int64:
			var n int64
			if n, err = strconv.ParseInt(raw, 10, 64); err == nil {
				field.SetInt(n)
			}
		case reflect.Float64:
			var f float64
			if f, err = strconv.ParseFloat(raw, 64); err == nil {
				field.SetFloat(f)
			}
		case reflect.Bool:
			var b bool
			if b, err = strconv.ParseBool(raw); err == nil {
				field.SetBool(b)
			}
		}
		if err != nil {
			fieldErrs = append(fieldErrs, FieldError{
				Code:    "ERR_TYPE",
				Field:   name,
				Message: fmt.Sprintf("%s has an invalid value %q", name, raw),
			})
		}
	}

	if len(fieldErrs) > 0 {
		return &requestError{fields: fieldErrs}
	}
	return nil
}

// respondBindError writes a 400 with the field errors
func respondBindError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "validation failed",
			"details": reqErr.fields,
		})
		return
	}
	respondError(w, http.StatusBadRequest, err.Error())
}
