// Package transform owns the target-centric polyline pipeline that turns a
// static map into fixed-size model input.
//
// Responsibilities: chunking raw map points at distance breaks, arc-length
// chunk centers, nearest-K chunk selection per target, and re-expressing
// the selected chunks in each target's local frame.
// Key types: TargetCentricPolyline, Batch, TargetBatch, Cache, Result.
//
// Dependency rule: transform may depend on agent, polyline and geometry.
// No SQL/database code is allowed in this package.
package transform
