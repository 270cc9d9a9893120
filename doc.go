// Package cuki implements a clock-based counting cuckoo filter that
// estimates the working set size and inter-reference recency of a stream
// of (key, size) references over a sliding window, without storing the
// keys themselves.
//
// Construct an Estimator with New, feed it references with Put, and read
// WSS at any time from any goroutine. See cmd/cukictl for a driver that
// wires a trace reader, the estimator, and a line-oriented sink together.
package cuki
