// Package render draws one target's transformed map chunks for debugging:
// a static PNG through gonum/plot and an interactive HTML scatter through
// go-echarts. Both use the target-centric frame, so the target sits at the
// origin facing +x.
package render
