// model/errors.go
package model

import "strings"

// FieldError tags a validation failure with the field it concerns.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FullMessage renders "Borrower already has an active loan" style text.
func (e FieldError) FullMessage() string {
	f := strings.ReplaceAll(e.Field, "_", " ")
	if f == "" {
		return e.Message
	}
	return strings.ToUpper(f[:1]) + f[1:] + " " + e.Message
}

// ValidationErrors accumulates field errors; validators evaluate every rule
// and never short-circuit.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	return strings.Join(v.FullMessages(), "; ")
}

func (v ValidationErrors) FullMessages() []string {
	out := make([]string, len(v))
	for i, fe := range v {
		out[i] = fe.FullMessage()
	}
	return out
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}
