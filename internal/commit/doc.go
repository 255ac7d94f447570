// Package commit executes mux plans and swaps verified output over the
// original files.
//
// The commit sequence is mux to a staged path, verify the result with
// ffprobe, then rename over the original. The original is never modified
// until the staged file has passed verification, so an interrupted or failed
// run can at worst leave staged artifacts behind, never a damaged source.
package commit
