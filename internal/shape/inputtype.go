package shape

import "strings"

const (
	InputNumeric  = "numeric"
	InputCheckbox = "checkbox"
	InputText     = "text"

	ControlGeneric = "generic-input"
)

// InputType maps a scalar type name to the semantic input type. A trailing
// "!" is ignored; unknown scalars fall back to text.
func InputType(scalar string) string {
	switch strings.TrimSuffix(scalar, "!") {
	case "Int", "Float":
		return InputNumeric
	case "Boolean":
		return InputCheckbox
	case "String":
		return InputText
	default:
		return InputText
	}
}

// InputControl maps a scalar type name to an input control tag.
// Every scalar currently shares the generic control.
func InputControl(scalar string) string { return ControlGeneric }
