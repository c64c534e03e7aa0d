// Package querysql binds request parameters to saved SQL templates.
//
// Templates are SQLite SQL using named placeholders only:
//
//	SELECT id, total FROM orders WHERE customer_id = :customer AND status = @status
//
// The three SQLite prefixes (":", "@", "$") are accepted. Positional
// placeholders ("?", "?NNN") are rejected because a request supplies a map,
// not a list. Values are always passed to the driver as sql.NamedArg and are
// never interpolated into the template text.
//
// A placeholder with no matching parameter binds as NULL.
package querysql
