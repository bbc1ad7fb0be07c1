package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/raccoongang/edx-extended-api/internal/models"
)

// ValidationError describes a single failed field rule.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is the error type surfaced for malformed request fields.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// ToValidationErrors converts go-playground validator errors.
func ToValidationErrors(err error) ValidationErrors {
	var out ValidationErrors
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return out
	}
	return ValidationErrors{{Field: "", Message: err.Error()}}
}

// Validator handles request and business rule validation.
type Validator struct {
	validate *validator.Validate
}

// Usernames follow the host platform's charset: word characters plus
// @ . + - _ and at most 150 characters.
var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// New creates a validator with the directory's custom rules registered.
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerBusinessRules()
	return v
}

// Validate validates struct rules for any request.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerBusinessRules() {
	v.validate.RegisterValidation("username_format", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return len(name) <= 150 && usernameRe.MatchString(name)
	})

	v.validate.RegisterValidation("platform_role", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case models.RoleSuperPlatformAdmin, models.RolePlatformAdmin, models.RoleStudioAdmin, models.RoleLearner:
			return true
		}
		return false
	})

	v.validate.RegisterValidation("year_of_birth", func(fl validator.FieldLevel) bool {
		year := int(fl.Field().Int())
		return year >= 1900 && year <= time.Now().Year()
	})
}

// ValidateUserCreate validates user creation rules, including the tri-state
// analytics access value.
func (v *Validator) ValidateUserCreate(req *CreateUserRequest) ValidationErrors {
	errs := v.Validate(req)
	errs = append(errs, validateAnalyticsAccess(req.AnalyticsAccess)...)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateUserUpdate validates user update rules.
func (v *Validator) ValidateUserUpdate(req *UpdateUserRequest) ValidationErrors {
	errs := v.Validate(req)
	errs = append(errs, validateAnalyticsAccess(req.AnalyticsAccess)...)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateAnalyticsAccess(field OptionalString) ValidationErrors {
	if !field.Set || field.Value == nil {
		return nil
	}
	switch *field.Value {
	case models.AnalyticsFullAccess, models.AnalyticsRestricted:
		return nil
	}
	return ValidationErrors{{
		Field:   "analytics_access",
		Message: fmt.Sprintf("must be %q, %q or null", models.AnalyticsFullAccess, models.AnalyticsRestricted),
		Value:   *field.Value,
		Rule:    "analytics_access",
	}}
}
