// Package mapio reads and writes static maps as GeoJSON feature
// collections in a local metric frame.
//
// LineString and MultiLineString features become one polyline per line;
// Polygon rings become closed polylines. The feature property "type" selects
// the polyline label and the optional "z" property sets a constant elevation.
package mapio
