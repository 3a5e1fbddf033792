// Package polyline owns static-map geometry: typed polylines, their derived
// direction vectors and the flattened point arrays the transform layer
// batches.
//
// Key types: Polyline, Label, StaticMap, Points.
//
// Dependency rule: polyline may depend on geometry, never on agent or
// transform.
package polyline
