package localize

import "sync"

// maxTrackLength bounds the stored MAP pose history.
const maxTrackLength = 4096

// StateTracker holds the latest estimator outputs for the HTTP
// endpoints: the locked map, the newest belief snapshot, and the
// history of MAP poses.
type StateTracker struct {
	mu       sync.RWMutex
	grid     *GridMap
	snapshot *BeliefSnapshot
	track    []Pose
}

// NewStateTracker creates an empty state tracker.
func NewStateTracker() *StateTracker {
	return &StateTracker{}
}

// SetMap stores the occupancy grid. The grid is immutable, so sharing
// the pointer across readers is safe.
func (st *StateTracker) SetMap(grid *GridMap) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.grid = grid
}

// Map returns the stored grid, or nil before the first map.
func (st *StateTracker) Map() *GridMap {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.grid
}

// HasMap reports whether a map has been stored.
func (st *StateTracker) HasMap() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.grid != nil
}

// UpdateBelief stores a new belief snapshot and appends its MAP pose to
// the track. The oldest half of the track is dropped once it exceeds
// maxTrackLength.
func (st *StateTracker) UpdateBelief(snapshot *BeliefSnapshot) {
	if snapshot == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.snapshot = copySnapshot(snapshot)
	st.track = append(st.track, snapshot.Pose)
	if len(st.track) > maxTrackLength {
		keep := st.track[len(st.track)/2:]
		st.track = append(make([]Pose, 0, len(keep)), keep...)
	}
}

// Snapshot returns a copy of the latest belief snapshot, or nil if no
// scan has been applied yet.
func (st *StateTracker) Snapshot() *BeliefSnapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return copySnapshot(st.snapshot)
}

// HasBelief reports whether a belief snapshot has been stored.
func (st *StateTracker) HasBelief() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshot != nil
}

// Track returns a copy of the MAP pose history.
func (st *StateTracker) Track() []Pose {
	st.mu.RLock()
	defer st.mu.RUnlock()

	track := make([]Pose, len(st.track))
	copy(track, st.track)
	return track
}

func copySnapshot(snapshot *BeliefSnapshot) *BeliefSnapshot {
	if snapshot == nil {
		return nil
	}
	out := *snapshot
	out.Cells = make([]float64, len(snapshot.Cells))
	copy(out.Cells, snapshot.Cells)
	return &out
}
