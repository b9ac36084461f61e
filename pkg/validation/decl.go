package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Declaration-level checks for parsed DSL statements, built on
// go-playground/validator with custom UCM tags. The structural validator
// above analyzes a whole graph; these validate a single declaration before
// it touches the store.

// CoordLimit bounds node coordinates and component geometry in the DSL.
const CoordLimit = 100000

// Validate is the shared validator instance with UCM tags registered.
var Validate *validator.Validate

var namePattern = regexp.MustCompile(`^[^{}()]*$`)

func init() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("ucm_name", validateName)
	_ = Validate.RegisterValidation("node_type", validateNodeType)
	_ = Validate.RegisterValidation("component_type", validateComponentType)

	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// NodeDecl is a parsed node statement: `<type> <name> at (x,y)`.
type NodeDecl struct {
	Type string  `json:"type" validate:"required,node_type"`
	Name string  `json:"name" validate:"required,max=200,ucm_name"`
	X    float64 `json:"x" validate:"min=-100000,max=100000"`
	Y    float64 `json:"y" validate:"min=-100000,max=100000"`
}

// ComponentDecl is a parsed component header:
// `component <name> type <type> at (x,y) size (w,h)`.
type ComponentDecl struct {
	Name string  `json:"name" validate:"required,max=200,ucm_name"`
	Type string  `json:"type" validate:"required,component_type"`
	X    float64 `json:"x" validate:"min=-100000,max=100000"`
	Y    float64 `json:"y" validate:"min=-100000,max=100000"`
	W    float64 `json:"w" validate:"gt=0,max=100000"`
	H    float64 `json:"h" validate:"gt=0,max=100000"`
}

// CheckDecl validates a declaration struct and returns the findings as
// issues; an empty slice means the declaration is well-formed.
func CheckDecl(v any) []Issue {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var issues []Issue
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Type:     "invalid_declaration",
				Message:  fmt.Sprintf("%s: %s", fe.Field(), declErrorMessage(fe)),
			})
		}
		return issues
	}
	return []Issue{{Severity: SeverityError, Type: "invalid_declaration", Message: err.Error()}}
}

func declErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "ucm_name":
		return "name must not contain braces or parentheses"
	case "node_type":
		return "must be one of start, end, responsibility, empty, fork, join"
	case "component_type":
		return "must be one of team, object, process, agent, actor"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func validateName(fl validator.FieldLevel) bool {
	return namePattern.MatchString(fl.Field().String())
}

func validateNodeType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "start", "end", "responsibility", "empty", "fork", "join":
		return true
	}
	return false
}

func validateComponentType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "team", "object", "process", "agent", "actor":
		return true
	}
	return false
}
