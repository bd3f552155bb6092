package content

import "sync"

// keyedMutex serializes mutations per lesson ID so a concurrent append can
// never lose an update between read and write-back. Entries are retained for
// the process lifetime; the set is bounded by the number of lessons.
type keyedMutex struct {
	locks sync.Map // string -> *sync.Mutex
}

// lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
