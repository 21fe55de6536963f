//go:build !nanolog_release

package nanolog

// releaseBuild is false in ordinary builds, where contract violations
// (see errors.go) panic with a captured stack. Build with the
// nanolog_release tag to compile these checks out of the hot path.
const releaseBuild = false
