package web

import (
	"crypto/sha256"
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"devserve/log"
	"devserve/web/types"
)

// Ensure DirectoryMonitor implements MonitorInterface
var _ types.MonitorInterface = (*DirectoryMonitor)(nil)

// DirectoryMonitor watches a directory tree for changes by polling.
type DirectoryMonitor struct {
	root        string
	interval    time.Duration
	hashMap     map[string][sha256.Size]byte
	subscribers []chan types.ReloadEvent
	mutex       sync.RWMutex
	ticker      *time.Ticker
	done        chan struct{}
	stopOnce    sync.Once
	primed      bool
	everyN      *log.Every
}

// NewDirectoryMonitor creates a new monitor for root.
func NewDirectoryMonitor(root string, interval time.Duration) *DirectoryMonitor {
	return &DirectoryMonitor{
		root:     root,
		interval: interval,
		hashMap:  make(map[string][sha256.Size]byte),
		done:     make(chan struct{}),
		everyN:   log.NewEvery(60 * time.Second),
	}
}

// Start takes an initial snapshot and begins polling.
func (dm *DirectoryMonitor) Start() {
	dm.checkForUpdates()
	dm.ticker = time.NewTicker(dm.interval)
	go func() {
		for {
			select {
			case <-dm.ticker.C:
				dm.checkForUpdates()
			case <-dm.done:
				return
			}
		}
	}()
}

// Stop ends the monitoring and closes all subscriber channels.
func (dm *DirectoryMonitor) Stop() {
	dm.stopOnce.Do(func() {
		if dm.ticker != nil {
			dm.ticker.Stop()
		}
		close(dm.done)

		dm.mutex.Lock()
		defer dm.mutex.Unlock()
		for _, ch := range dm.subscribers {
			close(ch)
		}
		dm.subscribers = nil
	})
}

// Subscribe registers a channel to receive change events.
func (dm *DirectoryMonitor) Subscribe() chan types.ReloadEvent {
	events := make(chan types.ReloadEvent, 10)

	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	select {
	case <-dm.done:
		close(events)
		return events
	default:
	}
	dm.subscribers = append(dm.subscribers, events)
	return events
}

// Unsubscribe removes a channel from receiving events.
func (dm *DirectoryMonitor) Unsubscribe(ch chan types.ReloadEvent) {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	for i, sub := range dm.subscribers {
		if sub == ch {
			dm.subscribers = append(dm.subscribers[:i], dm.subscribers[i+1:]...)
			break
		}
	}
}

// Done returns a channel that is closed when the monitor stops.
func (dm *DirectoryMonitor) Done() <-chan struct{} {
	return dm.done
}

// snapshot hashes the size and modification time of every regular file under
// root. Hidden directories such as .git are skipped.
func (dm *DirectoryMonitor) snapshot() (map[string][sha256.Size]byte, error) {
	hashes := make(map[string][sha256.Size]byte)
	err := filepath.WalkDir(dm.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p != dm.root {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if p != dm.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(dm.root, p)
		if err != nil {
			return err
		}

		var buf [16]byte
		binary.LittleEndian.PutUint64(buf[:8], uint64(info.Size()))
		binary.LittleEndian.PutUint64(buf[8:], uint64(info.ModTime().UnixNano()))
		hashes[filepath.ToSlash(rel)] = sha256.Sum256(buf[:])
		return nil
	})
	return hashes, err
}

// checkForUpdates compares a fresh snapshot with the previous one and
// notifies subscribers of any difference.
func (dm *DirectoryMonitor) checkForUpdates() {
	hashes, err := dm.snapshot()
	if err != nil {
		if dm.everyN.ShouldLog() {
			log.WarningLog.Printf("could not scan %s: %v", dm.root, err)
		}
		return
	}

	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	first := !dm.primed
	dm.primed = true
	var changed []string
	for name, h := range hashes {
		if old, ok := dm.hashMap[name]; !ok || old != h {
			changed = append(changed, name)
		}
	}
	for name := range dm.hashMap {
		if _, ok := hashes[name]; !ok {
			changed = append(changed, name)
		}
	}
	dm.hashMap = hashes

	if first || len(changed) == 0 {
		return
	}

	sort.Strings(changed)
	event := types.ReloadEvent{
		Type:      "reload",
		Changed:   changed,
		Timestamp: time.Now(),
	}
	log.FileOnlyInfoLog.Printf("detected %d changed file(s): %s", len(changed), strings.Join(changed, ", "))

	// Sends never block, so holding the lock keeps Stop from closing a
	// channel mid-send.
	for _, sub := range dm.subscribers {
		select {
		case sub <- event:
		default:
			// Channel is full, the subscriber reloads on the pending event anyway.
		}
	}
}
