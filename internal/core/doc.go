// Package core holds the transport-independent operations of the data API.
//
// Each HTTP route calls exactly one of them:
//
//   - [Validator.Validate] / [Validator.ValidateJSON] check a person payload
//     against the fixed [Record] shape and return either a Record or a
//     [*ValidationError] listing the failing field.
//   - [Reformat] parses a date under one strftime pattern and renders it
//     under another, failing with a [*FormatError].
//   - [Clean] fills missing name, email and age cells of a [Table] with
//     fixed defaults.
//
// Uploaded files are turned into a Table by [DecodeTable] (CSV or XLSX).
// [Limiter] caps how many uploads are decoded at once, and [MapError]
// classifies any error into a [UserMessage] carrying a support code.
//
// Nothing in this package keeps state between calls except the Limiter.
package core
