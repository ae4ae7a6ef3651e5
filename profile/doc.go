// Package profile wraps [github.com/pkg/profile] behind the pprof build
// tag so that release builds carry no profiling machinery.
//
// Without the tag, [Config.Start] and the returned Stop are no-ops and
// [Modes] reports nothing. With -tags pprof, the supported profiling
// modes are exposed to the CLI and a profiler is started on demand.
package profile

// Tag is the build tag that enables profiling support.
const Tag = "pprof"
