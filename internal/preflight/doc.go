// Package preflight provides readiness checks for the external binaries and
// filesystem paths that lyricmux depends on.
//
// These checks run in two contexts:
//   - The CLI "lyricmux preflight" command displays every check result so a
//     user can see why a batch would fail before touching any files.
//   - Individual check functions back the run command's early validation.
package preflight
