package services

import (
	"sync"
	"time"

	"stratus-efb/chartvault/internal/models/dtos"
)

// SyncState names the orchestrator's position in its state machine
type SyncState string

const (
	StateIdle            SyncState = "IDLE"
	StateCheckingVersion SyncState = "CHECKING_VERSION"
	StateDownloading     SyncState = "DOWNLOADING"
	StatePersisting      SyncState = "PERSISTING"
	StateDemotingOthers  SyncState = "DEMOTING_OTHERS"
	StateCleanup         SyncState = "CLEANUP"
	StateError           SyncState = "ERROR"
)

// ProgressReporter is the boundary the UI observes. The orchestrator is
// the only writer; everyone else polls Snapshot. The fraction is clamped
// so it never decreases within a pass and reaches 1.0 only on success.
type ProgressReporter struct {
	mu           sync.RWMutex
	state        SyncState
	isSyncing    bool
	fraction     float64
	message      string
	lastError    string
	lastSyncedAt *time.Time
}

// NewProgressReporter creates an idle reporter
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{state: StateIdle}
}

// Begin marks the start of a pass and resets per-pass fields
func (p *ProgressReporter) Begin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateCheckingVersion
	p.isSyncing = true
	p.fraction = 0
	p.message = ""
	p.lastError = ""
}

// SetState records the state machine transition with a user-facing message
func (p *ProgressReporter) SetState(state SyncState, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
	p.message = message
}

// SetFraction reports download progress. Values below the current
// fraction or outside [0,1) are ignored; 1.0 is reserved for Complete.
func (p *ProgressReporter) SetFraction(f float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f <= p.fraction || f < 0 {
		return
	}
	if f >= 1 {
		f = 0.99
	}
	p.fraction = f
}

// Fail records the pass error and returns the reporter to idle
func (p *ProgressReporter) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateIdle
	p.isSyncing = false
	p.lastError = err.Error()
}

// Complete marks a fully successful pass
func (p *ProgressReporter) Complete(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.state = StateIdle
	p.isSyncing = false
	p.fraction = 1
	p.message = message
	p.lastError = ""
	p.lastSyncedAt = &now
}

// Snapshot returns a point-in-time copy for the UI
func (p *ProgressReporter) Snapshot() dtos.SyncStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var syncedAt *time.Time
	if p.lastSyncedAt != nil {
		t := *p.lastSyncedAt
		syncedAt = &t
	}

	return dtos.SyncStatus{
		State:            string(p.state),
		IsSyncing:        p.isSyncing,
		ProgressFraction: p.fraction,
		StatusMessage:    p.message,
		LastError:        p.lastError,
		LastSyncedAt:     syncedAt,
	}
}
