// Package ecode defines the numeric error codes cursorpage attaches to its
// errors, plus small helpers for composing field-level messages.
//
// # Error Code Convention
//
// Codes follow the same numbering scheme as the rest of the framework:
//   - 0: Success (OK)
//   - -400 to -499: Request and parameter errors
//   - -500+: Server errors
//   - -1000 and below: Application specific codes
//
// Pagination registers its own range:
//
//	ecode.PagingConfiguration // -1001: invalid paginator configuration
//	ecode.PagingPointer       // -1002: malformed continuation token
//	ecode.PagingStoreQuery    // -1003: store query failed
//
// # Getting Error Messages
//
//	message := ecode.Text(ecode.PagingPointer)
//	// Returns: "Invalid page pointer"
//
// # Custom Error Codes
//
//	ecode.Register(-2001, "Export job expired")
package ecode
