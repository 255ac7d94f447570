// Package history persists batch run records to SQLite.
//
// Each run gets a row with its directories, flags, and the acceleration
// decision, plus one row per touched file with the outcome and matched
// payload paths. The store is write-mostly and purely observational: the
// pipeline never consults history to decide what to process, so the
// database can be deleted at any time.
package history
