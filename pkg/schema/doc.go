// Package schema validates answers before they reach the reducer.
//
// Input placeholders declare an input_type (text, number, integer, email,
// phone, date, currency or percentage) and an optional input_validation
// string of "|"-separated rules:
//
//	required        the answer must not be empty
//	min:N / max:N   numeric bounds, or length bounds for textual types
//	pattern:REGEX   the answer must match the expression
//
// Unknown types fall back to text and unknown rules are ignored, so a form
// authored for a newer version still runs.
//
// Select answers are checked against the declared options.
//
//	err := schema.ValidateResponse(question, "age", domain.Text("42"))
//	for _, e := range schema.ValidationErrors(err) {
//	    // render e
//	}
package schema
