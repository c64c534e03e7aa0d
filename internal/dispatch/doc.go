// Package dispatch executes saved queries on behalf of the transport.
//
// A Dispatcher looks a query up in a read-only Queries source, validates
// the request parameters against the query's schema, and hands the template
// to an Executor. It adds three things around that call:
//
//   - batch execution over a list of parameter sets, fail-fast, results in
//     input order
//   - an optional in-memory TTL cache for GET results
//   - one OpenTelemetry span per execution
//
// The Dispatcher never mutates its Queries source; the only state it owns
// is the cache.
package dispatch
