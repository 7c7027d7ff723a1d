package llm

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report field paths using their JSON names, e.g. input[0].content[1].type
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateContentPart, ContentPart{})

	return v
}

func validateContentPart(sl validator.StructLevel) {
	part, ok := sl.Current().Interface().(ContentPart)
	if !ok || part.Type != PartInputFile {
		return
	}

	if part.Filename == "" {
		sl.ReportError(part.Filename, "filename", "Filename", "required", "")
	}

	switch {
	case part.FileData == "":
		sl.ReportError(part.FileData, "file_data", "FileData", "required", "")
	case sl.Validator().Var(part.FileData, "datauri") != nil:
		sl.ReportError(part.FileData, "file_data", "FileData", "datauri", "")
	}
}

// InputError describes conversation turns that do not match the expected shape.
type InputError struct {
	Problems []string
}

func (e *InputError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

type inputEnvelope struct {
	Input []ConversationTurn `json:"input" validate:"dive"`
}

// ValidateInput checks every turn and content part in input. It returns an
// *InputError listing each offending field, or nil.
func ValidateInput(input []ConversationTurn) error {
	err := validate.Struct(inputEnvelope{Input: input})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating input: %w", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return &InputError{Problems: problems}
}

func describe(fe validator.FieldError) string {
	// Drop the envelope type name from the namespace
	_, path, _ := strings.Cut(fe.Namespace(), ".")

	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", path, fe.Param(), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("%s must contain at least %s part(s)", path, fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "datauri":
		return fmt.Sprintf("%s must be a data URI", path)
	default:
		return fmt.Sprintf("%s failed %q validation", path, fe.Tag())
	}
}
