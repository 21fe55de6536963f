//go:build nanolog_release

package nanolog

// releaseBuild is true when built with the nanolog_release tag. Contract
// violations become silent undefined behavior, as spec.md §7 allows, so
// the check itself compiles away along with the stack capture.
const releaseBuild = true
