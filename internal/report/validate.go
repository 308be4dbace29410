package report

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidReport marks a structurally invalid Report.
	ErrInvalidReport = errors.New("invalid report")
	// ErrInvalidTrace marks a structurally invalid Trace.
	ErrInvalidTrace = errors.New("invalid trace")
)

// FieldError is a single schema violation addressed by JSON path.
type FieldError struct {
	Path string
	Rule string
}

// ValidationError lists every violation found in one Report or Trace.
type ValidationError struct {
	kind   error
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Path, f.Rule))
	}
	return fmt.Sprintf("%v: %s", e.kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return e.kind }

// Validator checks Reports and Traces against the output schema.
// It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a schema validator with JSON field naming and the
// chart arity rule registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(chartArity, ChartSpec{})
	return &Validator{v: v}
}

func chartArity(sl validator.StructLevel) {
	c := sl.Current().Interface().(ChartSpec)
	want := c.Type.Arity()
	if want == 0 {
		// unknown types are reported by the oneof tag
		return
	}
	if len(c.Cols) != want {
		sl.ReportError(c.Cols, "cols", "Cols", "arity", fmt.Sprint(want))
	}
}

// Report validates r and returns a *ValidationError wrapping ErrInvalidReport.
func (v *Validator) Report(r Report) error {
	return v.check(r, ErrInvalidReport)
}

// Trace validates t and returns a *ValidationError wrapping ErrInvalidTrace.
func (v *Validator) Trace(t Trace) error {
	return v.check(t, ErrInvalidTrace)
}

func (v *Validator) check(s any, kind error) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", kind, err)
	}
	out := &ValidationError{kind: kind}
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out.Fields = append(out.Fields, FieldError{Path: trimRoot(fe.Namespace()), Rule: rule})
	}
	return out
}

// trimRoot drops the Go type name validator puts in front of every namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var defaultValidator = NewValidator()

// Validate checks r with a shared validator.
func Validate(r Report) error { return defaultValidator.Report(r) }

// ValidateTrace checks t with a shared validator.
func ValidateTrace(t Trace) error { return defaultValidator.Trace(t) }
