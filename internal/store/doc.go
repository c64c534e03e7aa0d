// Package store executes saved query templates against SQLite.
//
// The store owns no schema. It opens an existing (or new, empty) database
// and runs whatever SQL the saved queries contain, binding request
// parameters through querysql. Rows come back as column-name maps in
// result order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - One open connection unless WithMaxOpenConns says otherwise
package store
