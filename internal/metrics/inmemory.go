package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	PostsCreated      uint64
	PostsUpdated      uint64
	PostsDeleted      uint64
	OwnershipDenials  uint64
	ValidationFailed  uint64
	LoginsSucceeded   uint64
	LoginsFailed      uint64
	UsersRegistered   uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	postsCreated     uint64
	postsUpdated     uint64
	postsDeleted     uint64
	ownershipDenials uint64
	validationFailed uint64
	loginsSucceeded  uint64
	loginsFailed     uint64
	usersRegistered  uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		PostsCreated:     atomic.LoadUint64(&m.postsCreated),
		PostsUpdated:     atomic.LoadUint64(&m.postsUpdated),
		PostsDeleted:     atomic.LoadUint64(&m.postsDeleted),
		OwnershipDenials: atomic.LoadUint64(&m.ownershipDenials),
		ValidationFailed: atomic.LoadUint64(&m.validationFailed),
		LoginsSucceeded:  atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:     atomic.LoadUint64(&m.loginsFailed),
		UsersRegistered:  atomic.LoadUint64(&m.usersRegistered),
	}
}

// IncPostCreated increments the created-post counter.
func (m *InMemoryRecorder) IncPostCreated() {
	atomic.AddUint64(&m.postsCreated, 1)
}

// IncPostUpdated increments the updated-post counter.
func (m *InMemoryRecorder) IncPostUpdated() {
	atomic.AddUint64(&m.postsUpdated, 1)
}

// IncPostDeleted increments the deleted-post counter.
func (m *InMemoryRecorder) IncPostDeleted() {
	atomic.AddUint64(&m.postsDeleted, 1)
}

// IncOwnershipDenied increments the ownership-denial counter.
func (m *InMemoryRecorder) IncOwnershipDenied() {
	atomic.AddUint64(&m.ownershipDenials, 1)
}

// IncValidationFailed increments the validation-failure counter.
func (m *InMemoryRecorder) IncValidationFailed() {
	atomic.AddUint64(&m.validationFailed, 1)
}

// IncLoginSucceeded increments the successful-login counter.
func (m *InMemoryRecorder) IncLoginSucceeded() {
	atomic.AddUint64(&m.loginsSucceeded, 1)
}

// IncLoginFailed increments the failed-login counter.
func (m *InMemoryRecorder) IncLoginFailed() {
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncUserRegistered increments the registered-user counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}
