// Package validation validates request structs through go-playground
// validator tags and reports failures as INVALID_INPUT AppErrors whose
// details list each offending field by its JSON name.
//
//	type RegisterInput struct {
//	    Email string `json:"email" validate:"required,email"`
//	}
//	err := validation.Validate(in)
package validation
