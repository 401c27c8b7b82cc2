// Package build drives the external MapBasic compiler for one output folder.
//
// An Orchestrator resolves the build set, runs the compiler once and turns the
// error artifacts it leaves behind into Diagnostics.
//
// Build set:
//   - With a project file, every value of the Module key in its Link section names
//     a module; "<folder>/<module>" with the source extension is built if it exists.
//   - Without one, every source file in the folder is built. A project file found
//     in the same scan becomes the project (the last one in name order wins).
//
// Two behaviours are kept on purpose and are easy to trip over:
//   - A module listed in the project but missing on disk is left out of the build
//     without failing it. The orchestrator logs it at warn level.
//   - Every line of every error artifact is a diagnostic and fails the build, even
//     a blank one. The compiler's own exit code is not used.
//
// Execute never returns an error. Failures are reported as a false result, with
// the reason written to the error stream and the log.
//
// Watcher re-runs a build whenever source or project files in the folder change.
package build
