// Package form binds and validates submitted forms. Rules live in `binding`
// struct tags and run through gin's validator/v10 engine; errors come back
// keyed by the submitted field name so a page can be re-rendered with them.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/jwalitptl/medrec/internal/model"
)

// NonFieldKey holds errors that do not belong to a single field.
const NonFieldKey = "_form"

var (
	setupOnce     sync.Once
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

	// now is swapped in tests.
	now = time.Now
)

// Setup registers the custom rules on gin's validator. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		mustRegister(v, "notblank", validators.NotBlank)
		mustRegister(v, "notfuture", notFuture)
		mustRegister(v, "username", validUsername)
		mustRegister(v, "availability", validAvailability)
		mustRegister(v, "medications", validMedications)
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("form: register %s: %v", tag, err))
	}
}

// fieldName reports the submitted name of a field: form tag first, then json.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Bind decodes the request into f and validates it. It returns nil when the
// form is valid, otherwise the field errors to show.
func Bind(c *gin.Context, f interface{}) map[string]string {
	Setup()
	if err := c.ShouldBind(f); err != nil {
		return FieldErrors(err)
	}
	return nil
}

// FieldErrors flattens a binding error into field -> message.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if _, seen := out[fe.Field()]; !seen {
				out[fe.Field()] = message(fe)
			}
		}
		return out
	}
	return map[string]string{NonFieldKey: "The submitted form could not be read."}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "oneof":
		return "Select a valid choice."
	case "eqfield":
		return "The two password fields didn't match."
	case "datetime":
		return "Enter a valid date."
	case "gte", "lte":
		return "Ensure this value is within range."
	case "notfuture":
		return "Date cannot be in the future."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "availability":
		return "Enter a valid availability schedule: weekday names mapped to HH:MM slots."
	case "medications":
		return "Enter a non-empty list of medications, each with a name and a dosage."
	}
	return "Enter a valid value."
}

func notFuture(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	today := model.Today(now())
	d, err := time.ParseInLocation(model.DateLayout, s, today.Location())
	if err != nil {
		return false
	}
	return !d.After(today)
}

func validUsername(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

func validAvailability(fl validator.FieldLevel) bool {
	_, err := parseAvailability(fl.Field().String())
	return err == nil
}

func validMedications(fl validator.FieldLevel) bool {
	_, err := parseMedications(fl.Field().String())
	return err == nil
}

func parseAvailability(raw string) (model.Availability, error) {
	a := model.Availability{}
	if strings.TrimSpace(raw) == "" {
		return a, nil
	}
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func parseMedications(raw string) (model.Medications, error) {
	var m model.Medications
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, s, now().Location())
}
