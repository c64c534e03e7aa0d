// Package server exposes saved queries over HTTP.
//
// Routes:
//
//	GET  /{project}/{name...}         query-string parameters
//	POST /{project}/{name...}         JSON object body
//	POST /{project}/{name...}/batch   JSON array of objects, or {"queries": [...]}
//
// Responses are JSON arrays of row objects (batch: an array of those).
// Errors are {"error": "...", "code": "..."} with 404 for unknown routes
// and queries, 400 for bad parameters and 405 for other methods.
//
// Every response carries an X-Request-ID header. An incoming value is
// echoed back; otherwise a UUIDv7 is generated.
package server
