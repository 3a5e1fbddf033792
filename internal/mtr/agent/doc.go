// Package agent owns the agent side of the motion-prediction feature layer.
//
// Responsibilities: per-tick agent snapshots (AgentState), the fixed
// channel layout of trajectory tensors (Trajectory), and the bounded
// per-agent history buffer (History) that turns observations into model
// input.
// Key types: AgentState, Trajectory, History, Info.
//
// Dependency rule: agent may depend on geometry, never on polyline or
// transform. No SQL/database code is allowed in this package.
package agent
