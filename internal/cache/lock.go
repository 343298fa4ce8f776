package cache

import (
	"fmt"
	"os"
)

// acquireLock guards index writes against other processes with the
// simplest mechanism that's portable across platforms: an
// exclusive-create lock file. If another process holds it, the write is
// skipped rather than blocking indefinitely; the cache is best-effort
// and never aborts a run.
func (f *Facade) acquireLock() (unlock func(), err error) {
	path := f.lockPath()
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("cache locked by another process: %s", path)
		}
		return nil, err
	}
	file.Close()
	return func() { os.Remove(path) }, nil
}
