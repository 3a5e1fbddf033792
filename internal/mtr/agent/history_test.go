package agent

import (
	"fmt"
	"math"
	"testing"

	"github.com/banshee-data/motion-prep/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validState(id string, ts float64, x float64) AgentState {
	return AgentState{
		UUID:      id,
		Timestamp: ts,
		LabelID:   1,
		XYZ:       [3]float64{x, 2 * x, 0.5},
		Size:      [3]float64{4.5, 1.8, 1.6},
		Yaw:       0.1 * x,
		VXY:       [2]float64{x, -x},
		IsValid:   true,
	}
}

func newHistory(t *testing.T, maxLength int) *History {
	t.Helper()
	h, err := NewHistory(maxLength)
	require.NoError(t, err)
	return h
}

func TestNewHistory_RejectsNonPositiveLength(t *testing.T) {
	_, err := NewHistory(0)
	assert.Error(t, err)
}

func TestHistoryConfigFromTuning(t *testing.T) {
	cfg := HistoryConfigFromTuning(config.MustLoadDefaultConfig())
	assert.Equal(t, 11, cfg.MaxLength)
	assert.Equal(t, 1000.0, cfg.AncientThresholdMs)
}

func TestUpdateState_PadsWithSentinels(t *testing.T) {
	for n := 1; n < 5; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			h := newHistory(t, 5)
			id := uuid.NewString()
			for i := 0; i < n; i++ {
				h.UpdateState(validState(id, float64(i*100), float64(i)), nil)
			}

			states, err := h.States(id)
			require.NoError(t, err)
			require.Len(t, states, 5)

			valid := 0
			for _, s := range states {
				if s.IsValid {
					valid++
				}
			}
			assert.Equal(t, n, valid)

			// Sentinels sit in front of the real observations.
			for _, s := range states[:5-n] {
				assert.False(t, s.IsValid)
				assert.True(t, math.IsInf(s.Timestamp, -1))
				assert.Equal(t, -1, s.LabelID)
			}
		})
	}
}

func TestUpdateState_EvictsOldestFIFO(t *testing.T) {
	h := newHistory(t, 3)
	for i := 0; i < 7; i++ {
		h.UpdateState(validState("a", float64(i), float64(i)), nil)
	}

	states, err := h.States("a")
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, []float64{4, 5, 6}, []float64{states[0].Timestamp, states[1].Timestamp, states[2].Timestamp})

	traj, uuids, err := h.AsTrajectory(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, uuids)
	assert.Equal(t, []int{1, 3, NumDim}, traj.Shape())
	xyz := traj.XYZ()
	assert.Equal(t, []float64{4, 8, 0.5, 5, 10, 0.5, 6, 12, 0.5}, xyz)
}

func TestUpdateState_InfoLastWriteWins(t *testing.T) {
	h := newHistory(t, 2)

	h.UpdateState(validState("a", 0, 0), &Info{UUID: "a", Classification: "car"})
	h.UpdateState(validState("a", 1, 1), nil)
	info, ok := h.Info("a")
	require.True(t, ok)
	assert.Equal(t, "car", info.Classification)

	h.UpdateState(validState("a", 2, 2), &Info{UUID: "a", Classification: "truck"})
	info, _ = h.Info("a")
	assert.Equal(t, "truck", info.Classification)

	h.UpdateState(validState("b", 0, 0), nil)
	_, ok = h.Info("b")
	assert.False(t, ok)
}

func TestUpdate_LengthMismatch(t *testing.T) {
	h := newHistory(t, 2)

	err := h.Update([]AgentState{validState("a", 0, 0)}, nil)
	require.ErrorIs(t, err, ErrLengthMismatch)
	assert.Equal(t, 0, h.Len(), "nothing is applied on mismatch")

	states := []AgentState{validState("a", 0, 0), validState("b", 0, 1)}
	infos := []Info{InfoFromState(states[0]), InfoFromState(states[1])}
	require.NoError(t, h.Update(states, infos))
	assert.Equal(t, []string{"a", "b"}, h.UUIDs())
}

func TestRemoveInvalid(t *testing.T) {
	t.Run("threshold boundary", func(t *testing.T) {
		h := newHistory(t, 3)
		h.UpdateState(validState("recent", 950, 0), &Info{UUID: "recent"})
		h.UpdateState(validState("stale", 500, 0), &Info{UUID: "stale"})

		removed := h.RemoveInvalid(1000, 100)
		assert.Equal(t, []string{"stale"}, removed)
		assert.True(t, h.Has("recent"))
		assert.False(t, h.Has("stale"))
		_, ok := h.Info("stale")
		assert.False(t, ok, "info is dropped with the history")
	})

	t.Run("future timestamps are ancient too", func(t *testing.T) {
		h := newHistory(t, 3)
		h.UpdateState(validState("future", 1500, 0), nil)
		h.RemoveInvalid(1000, 100)
		assert.False(t, h.Has("future"))
	})

	t.Run("latest invalid state is removed", func(t *testing.T) {
		h := newHistory(t, 3)
		h.UpdateState(validState("a", 1000, 0), nil)
		invalid := validState("a", 1000, 0)
		invalid.IsValid = false
		h.UpdateState(invalid, nil)
		h.RemoveInvalid(1000, 100)
		assert.False(t, h.Has("a"))
	})

	t.Run("only the latest state is considered", func(t *testing.T) {
		h := newHistory(t, 3)
		h.UpdateState(validState("a", 0, 0), nil) // ancient, but not latest
		h.UpdateState(validState("a", 990, 0), nil)
		assert.Empty(t, h.RemoveInvalid(1000, 100))
		assert.True(t, h.Has("a"))
	})

	t.Run("order of survivors is preserved", func(t *testing.T) {
		h := newHistory(t, 2)
		for _, id := range []string{"a", "b", "c", "d"} {
			ts := 1000.0
			if id == "b" {
				ts = 0
			}
			h.UpdateState(validState(id, ts, 0), nil)
		}
		h.RemoveInvalid(1000, 100)
		assert.Equal(t, []string{"a", "c", "d"}, h.UUIDs())

		// A re-seen uuid starts a fresh buffer at the end.
		h.UpdateState(validState("b", 1000, 0), nil)
		assert.Equal(t, []string{"a", "c", "d", "b"}, h.UUIDs())
	})
}

func TestIsAncient(t *testing.T) {
	assert.False(t, IsAncient(950, 1000, 100))
	assert.True(t, IsAncient(500, 1000, 100))
	assert.False(t, IsAncient(900, 1000, 100), "boundary is not ancient")
	assert.True(t, IsAncient(math.Inf(-1), 1000, 100))
}

func TestAsTrajectory(t *testing.T) {
	h := newHistory(t, 4)
	h.UpdateState(validState("a", 0, 1), nil)
	h.UpdateState(validState("b", 0, 2), nil)
	h.UpdateState(validState("a", 100, 3), nil)

	t.Run("full", func(t *testing.T) {
		traj, uuids, err := h.AsTrajectory(false)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, uuids)
		assert.Equal(t, []int{2, 4, NumDim}, traj.Shape())
		assert.Equal(t, []int64{1, 1}, traj.LabelIDs())
		assert.Equal(t, []bool{false, false, true, true, false, false, false, true}, traj.IsValid())
	})

	t.Run("latest", func(t *testing.T) {
		traj, uuids, err := h.AsTrajectory(true)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, uuids)
		assert.Equal(t, []int{2, NumDim}, traj.Shape())
		assert.Equal(t, []float64{3, 6, 2, 4}, traj.XY())
	})

	t.Run("empty history", func(t *testing.T) {
		empty := newHistory(t, 4)
		traj, uuids, err := empty.AsTrajectory(false)
		require.NoError(t, err)
		assert.Empty(t, uuids)
		assert.Equal(t, []int{0, 4, NumDim}, traj.Shape())
	})
}

func TestTargetAsTrajectory(t *testing.T) {
	h := newHistory(t, 3)
	info := Info{UUID: "a", LabelID: 1, Classification: "car"}
	h.UpdateState(validState("a", 0, 1), &info)
	h.UpdateState(validState("a", 100, 2), nil)

	t.Run("full", func(t *testing.T) {
		traj, gotInfo, err := h.TargetAsTrajectory("a", false)
		require.NoError(t, err)
		assert.Equal(t, info, gotInfo)
		assert.Equal(t, []int{1, 3, NumDim}, traj.Shape())
		assert.Equal(t, []bool{false, true, true}, traj.IsValid())
	})

	t.Run("latest", func(t *testing.T) {
		traj, _, err := h.TargetAsTrajectory("a", true)
		require.NoError(t, err)
		assert.Equal(t, []int{1, NumDim}, traj.Shape())
		assert.Equal(t, []float64{2, 4, 0.5}, traj.XYZ())
	})

	t.Run("not found", func(t *testing.T) {
		_, _, err := h.TargetAsTrajectory("missing", false)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "missing")

		_, _, err = h.LatestTargetTrajectory("missing")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("latest target uuids", func(t *testing.T) {
		_, uuids, err := h.LatestTargetTrajectory("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, uuids)
	})
}

func TestSnapshotsAreCopies(t *testing.T) {
	h := newHistory(t, 2)
	h.UpdateState(validState("a", 0, 1), nil)

	states, err := h.States("a")
	require.NoError(t, err)
	states[1].XYZ[0] = 999

	traj, _, err := h.AsTrajectory(true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, traj.XYZ()[0])

	uuids := h.UUIDs()
	uuids[0] = "mutated"
	assert.Equal(t, []string{"a"}, h.UUIDs())
}

func TestFromTrajectory(t *testing.T) {
	h := newHistory(t, 4)

	// One recorded agent with three steps.
	var data []float64
	for i := 0; i < 3; i++ {
		row := validState("x", 0, float64(i)).Row()
		data = append(data, row[:]...)
	}
	traj, err := NewTrajectory(data, []int{1, 3, NumDim}, []int64{2})
	require.NoError(t, err)

	require.NoError(t, h.FromTrajectory(traj, 2, "ego"))
	states, err := h.States("ego")
	require.NoError(t, err)
	assert.False(t, states[0].IsValid)
	assert.Equal(t, []float64{0, 100, 200}, []float64{states[1].Timestamp, states[2].Timestamp, states[3].Timestamp})
	assert.Equal(t, 2, states[3].LabelID)

	flat, err := NewTrajectory(data[:NumDim], []int{1, NumDim}, []int64{2})
	require.NoError(t, err)
	require.ErrorIs(t, h.FromTrajectory(flat, 2, "ego"), ErrShape)
}

func TestLatestTrajectories(t *testing.T) {
	h := newHistory(t, 3)
	a, b, c := uuid.NewString(), uuid.NewString(), uuid.NewString()
	h.UpdateState(validState(a, 0, 1), nil)
	h.UpdateState(validState(b, 0, 2), nil)
	h.UpdateState(validState(c, 0, 3), nil)
	h.UpdateState(validState(a, 100, 4), nil)

	traj, uuids, err := h.LatestTrajectories([]string{c, a})
	require.NoError(t, err)
	assert.Equal(t, []string{c, a}, uuids)
	assert.Equal(t, []int{2, NumDim}, traj.Shape())
	assert.Equal(t, validState(c, 0, 3).Row(), traj.Row(0))
	assert.Equal(t, validState(a, 100, 4).Row(), traj.Row(1))

	_, _, err = h.LatestTrajectories([]string{a, "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}
