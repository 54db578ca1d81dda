// Package validation provides input validation that reports failures as
// taxonomy ValidationErrors.
//
// Struct tag validation (using the validator library) suits config and
// request structs:
//
//	type PostRequest struct {
//	    Title string `validate:"required,max=300"`
//	    Body  string `validate:"required"`
//	}
//	err := validation.Validate(req)
//
// Programmatic validation collects field errors fluently:
//
//	v := validation.New()
//	v.Required("title", req.Title)
//	v.MaxLength("title", req.Title, 300)
//	err := v.Error()
package validation
