// Package registry holds the saved queries served by the gateway.
//
// A Registry is built exactly once by Load, which walks a configuration tree
// laid out as
//
//	<root>/<project>/<GET|POST>/<nested dirs>/<name>.<ext>
//
// and is never mutated afterwards. There are no exported mutators, so any
// number of request goroutines may call Lookup concurrently without locking.
//
// Loading tolerates bad files: a template that fails to parse, or whose
// canonical name collides with one already loaded, is logged, recorded in the
// LoadReport and skipped. Only a missing or unusable root directory is fatal
// (ConfigurationError).
package registry
