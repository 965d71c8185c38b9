package session

import (
	"sync"

	"github.com/mcoot/peoplebingo/internal/model"
)

// lockTable holds one mutex per session code. Entries are added when a code
// is first allocated and live as long as the process, like the sessions.
type lockTable struct {
	mu    sync.Mutex
	locks map[model.SessionCode]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[model.SessionCode]*sync.Mutex)}
}

// ensure returns the lock for code, creating it if needed
func (t *lockTable) ensure(code model.SessionCode) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[code]
	if !ok {
		l = &sync.Mutex{}
		t.locks[code] = l
	}
	return l
}

// get returns the lock for code, or false if the code was never allocated
func (t *lockTable) get(code model.SessionCode) (*sync.Mutex, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[code]
	return l, ok
}
