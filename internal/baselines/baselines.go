// Package baselines wraps eight third-party cache libraries as
// independent, cruder WSS estimators, driven by the same reference stream
// as the CCF for comparison (spec.md §1's MBF/SS/SWAMP/BMC baseline role,
// expanded to one adapter per library carried in the teacher's go.mod).
//
// None of these feed the CCF; each is a standalone Estimator exercised by
// cmd/cukictl's -baseline flag and by baselines_bench_test.go.
package baselines

// Estimator is the shared interface every baseline adapter implements.
type Estimator interface {
	Put(key []byte, size uint64)
	WSS() uint64
	Name() string
}

// sizeKey turns an opaque key into the string map/cache key most of these
// libraries want, without retaining a reference to the caller's slice.
func sizeKey(key []byte) string {
	return string(key)
}
