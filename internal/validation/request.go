package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"safetyreport/internal/config"
	apperrors "safetyreport/internal/errors"
)

// ReportRequest is a fully resolved report run
type ReportRequest struct {
	Driver     string    `validate:"required,oneof=pgx sqlite"`
	DSN        string    `validate:"required"`
	From       time.Time `validate:"required"`
	To         time.Time `validate:"required,gtefield=From"`
	OutputPath string    `validate:"required,workbook"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("workbook", func(fl validator.FieldLevel) bool {
		return config.IsWorkbookPath(fl.Field().String())
	})
	return v
}

// Validate checks the request fields
func (r *ReportRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			appErr := apperrors.NewValidationError(strings.Join(msgs, "; "))
			appErr.Cause = err
			return appErr
		}
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "workbook":
		return fmt.Sprintf("%s must end with %s", fe.Field(), config.WorkbookExt)
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// dateLayouts are the accepted spellings of a single date
var dateLayouts = []string{"1/2/2006", "2006-01-02"}

// rangePattern matches "M/D/YYYY-M/D/YYYY" with optional spaces around the dash
var rangePattern = regexp.MustCompile(`^\s*(\d{1,2}/\d{1,2}/\d{4})\s*-\s*(\d{1,2}/\d{1,2}/\d{4})\s*$`)

// ParseDate parses M/D/YYYY (leading zeros optional) or YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewParsingError(fmt.Sprintf("invalid date %q, expected M/D/YYYY or YYYY-MM-DD", s), nil)
}

// ParseDateRange parses "M/D/YYYY-M/D/YYYY". Both bounds are inclusive.
func ParseDateRange(s string) (from, to time.Time, err error) {
	m := rangePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, time.Time{}, apperrors.NewParsingError(
			fmt.Sprintf("invalid date range %q, expected M/D/YYYY-M/D/YYYY", s), nil)
	}
	if from, err = ParseDate(m[1]); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to, err = ParseDate(m[2]); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError(
			fmt.Sprintf("date range start %s is after end %s", m[1], m[2]))
	}
	return from, to, nil
}

// ParseBounds parses separate start and end dates
func ParseBounds(fromText, toText string) (from, to time.Time, err error) {
	if from, err = ParseDate(fromText); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to, err = ParseDate(toText); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError(
			fmt.Sprintf("date range start %s is after end %s", strings.TrimSpace(fromText), strings.TrimSpace(toText)))
	}
	return from, to, nil
}
