// Package geometry holds the planar primitives shared by the agent and
// polyline layers: rotation about the Z axis, segment lengths and unit
// directions.
//
// Angles are radians; positive rotates counter-clockwise when viewed from
// +Z. No package in internal/mtr rotates points any other way.
package geometry
