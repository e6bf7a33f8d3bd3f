package application

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/ThanimaVITC/thanima-connect/internal/department"
	"github.com/go-playground/validator/v10"
)

// DefaultMaxFileSize is the résumé size ceiling used when Limits leaves it unset.
const DefaultMaxFileSize int64 = 10 << 20

// DefaultAllowedTypes lists the résumé MIME types accepted when Limits leaves
// them unset: documents, images and short videos.
var DefaultAllowedTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/jpeg",
	"image/jpg",
	"image/png",
	"video/mp4",
	"video/mov",
	"video/quicktime",
	"video/avi",
	"video/x-msvideo",
}

var (
	regNoPattern = regexp.MustCompile(`^[1-9][0-9][A-Z]{3}[0-9]{4}$`)
	phonePattern = regexp.MustCompile(`^[+]*[(]{0,1}[0-9]{1,4}[)]{0,1}[-\s\./0-9]*$`)
)

const (
	msgExpectedText = "Expected a text value."
	msgInvalid      = "Invalid value."
	msgBadFileType  = "Only docs, PDFs, images, and videos are supported."
	// FormErrorKey holds errors that cannot be attributed to a single field.
	FormErrorKey = "form"
)

// messages maps "<field>.<tag>" to the text shown next to the field.
var messages = map[string]string{
	"name.min":                         "Name must be at least 2 characters.",
	"regNo.regno":                      "Invalid registration number format (e.g., 24BYB1234).",
	"branchAndYear.required":           "Please specify your branch and year of study.",
	"email.email":                      "Invalid email address.",
	"phone.min":                        "Phone number must be at least 10 digits.",
	"phone.phone":                      "Invalid phone number format.",
	"primaryPreference.department":     "Please select a primary department.",
	"secondaryPreference.department":   "Please select a secondary department.",
	"secondaryPreference.distinct":     "Primary and secondary preferences cannot be the same.",
	"tertiaryPreference.department":    "Please select a valid tertiary department.",
	"tertiaryPreference.distinct":      "Tertiary preference must differ from primary and secondary preferences.",
	"departmentJustification.required": "Please answer this question.",
	"skillsAndExperience.required":     "Please answer this question.",
}

// Limits configures the résumé rule.
type Limits struct {
	MaxFileSize  int64
	AllowedTypes []string
}

// ValidationError lists every violated field with a message per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid application: " + strings.Join(parts, "; ")
}

// Validator checks Inputs against the application rules. It is safe for
// concurrent use.
type Validator struct {
	v       *validator.Validate
	limits  Limits
	allowed map[string]bool
}

// NewValidator builds a Validator, filling unset limits with the defaults.
func NewValidator(limits Limits) *Validator {
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = DefaultMaxFileSize
	}
	if len(limits.AllowedTypes) == 0 {
		limits.AllowedTypes = DefaultAllowedTypes
	}
	allowed := make(map[string]bool, len(limits.AllowedTypes))
	for _, t := range limits.AllowedTypes {
		allowed[mediaType(t)] = true
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("regno", func(fl validator.FieldLevel) bool {
		return regNoPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return department.Valid(fl.Field().String())
	})
	v.RegisterStructValidation(distinctPreferences, Input{})

	return &Validator{v: v, limits: limits, allowed: allowed}
}

// Limits returns the effective résumé limits.
func (v *Validator) Limits() Limits { return v.limits }

// FileTooLarge is the message reported for a résumé over the size limit.
func (v *Validator) FileTooLarge() string {
	return fmt.Sprintf("Max file size is %s.", humanSize(v.limits.MaxFileSize))
}

// distinctPreferences enforces that no two preferences hold the same
// department. The error lands on the later of the two fields.
func distinctPreferences(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(Input)
	if !ok {
		return
	}
	if in.SecondaryPreference != "" && in.SecondaryPreference == in.PrimaryPreference {
		sl.ReportError(in.SecondaryPreference, FieldSecondaryPreference, "SecondaryPreference", "distinct", FieldPrimaryPreference)
	}
	if in.TertiaryPreference != "" &&
		(in.TertiaryPreference == in.PrimaryPreference || in.TertiaryPreference == in.SecondaryPreference) {
		sl.ReportError(in.TertiaryPreference, FieldTertiaryPreference, "TertiaryPreference", "distinct", "")
	}
}

// Validate returns the record for a valid input, or a ValidationError naming
// every violated field. It does not panic on malformed input.
func (v *Validator) Validate(in Input) (*Record, *ValidationError) {
	if fields := v.check(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return &Record{
		Name:                    in.Name,
		RegNo:                   in.RegNo,
		BranchAndYear:           in.BranchAndYear,
		Email:                   in.Email,
		Phone:                   in.Phone,
		PreviousExperience:      in.PreviousExperience,
		PrimaryPreference:       in.PrimaryPreference,
		SecondaryPreference:     in.SecondaryPreference,
		TertiaryPreference:      in.TertiaryPreference,
		DepartmentJustification: in.DepartmentJustification,
		SkillsAndExperience:     in.SkillsAndExperience,
		BonusEssay1:             in.BonusEssay1,
		BonusEssay2:             in.BonusEssay2,
	}, nil
}

// ValidateFields runs the full rule set but reports only the named fields.
func (v *Validator) ValidateFields(in Input, fields ...string) map[string]string {
	all := v.check(in)
	out := map[string]string{}
	for _, f := range fields {
		if msg, ok := all[f]; ok {
			out[f] = msg
		}
	}
	return out
}

func (v *Validator) check(in Input) (fields map[string]string) {
	fields = map[string]string{}
	defer func() {
		if r := recover(); r != nil {
			fields[FormErrorKey] = fmt.Sprintf("validation aborted: %v", r)
		}
	}()

	for _, key := range in.badTypes {
		fields[key] = msgExpectedText
	}

	err := v.v.Struct(in)
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; seen {
				continue
			}
			fields[fe.Field()] = messageFor(fe.Field(), fe.Tag())
		}
	case err != nil:
		fields[FormErrorKey] = msgInvalid
	}

	if msg := v.checkFile(in.Resume); msg != "" {
		fields[FieldResume] = msg
	}
	return fields
}

func (v *Validator) checkFile(a *Attachment) string {
	if a == nil {
		return ""
	}
	if a.Size > v.limits.MaxFileSize {
		return v.FileTooLarge()
	}
	if !v.allowed[mediaType(a.ContentType)] {
		return msgBadFileType
	}
	return ""
}

func messageFor(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return msgInvalid
}

func mediaType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

func humanSize(n int64) string {
	switch {
	case n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
