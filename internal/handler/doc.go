// Package handler provides HTTP request handlers for the survey API and the
// development sheet receiver.
//
// # Handler Pattern
//
//   - Constructor function (NewXxxHandler) accepts a config struct with dependencies
//   - RegisterRoutes attaches the handler's routes to a ServeMux
//   - Response helpers from response.go standardize output format
//   - Errors are mapped to RFC 9457 Problem Details responses by MapServiceError
//
// # Response Format
//
//   - WriteData: Single resource with optional HATEOAS links
//   - WriteCollection: List of resources with its count
//   - WriteJSON: Raw JSON response (used by the receiver)
//   - WriteError: RFC 9457 Problem Details error response
//
// # Routes
//
//	GET    /v1/form                     current answers
//	PATCH  /v1/form                     merge a partial answer set
//	DELETE /v1/form                     reset to defaults
//	POST   /v1/form/toggles/{kind}      entity operations
//	POST   /v1/form/finish              clear after a submission
//	GET    /v1/sections?flow=           completion report
//	POST   /v1/submissions              archive and send
//	GET    /v1/submissions[/{id}]       archive reads
//	POST   /v1/year-in-review/complete  mark the second flow done
//	GET    /v1/catalog                  roster and option tables
//
// The receiver serves POST /exec, GET /exec and GET /sheet.xlsx.
package handler
