// FILE: lixenwraith/reflector/settings/watch.go
package settings

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// Polling and reload timing
const (
	MinPollInterval      = 100 * time.Millisecond
	DefaultPollInterval  = time.Second
	DefaultDebounce      = 500 * time.Millisecond
	DefaultReloadTimeout = 5 * time.Second
	DefaultMaxWatchers   = 100
)

// Events sent to watchers next to changed paths
const (
	EventFileDeleted        = "file_deleted"
	EventPermissionsChanged = "permissions_changed"
	EventReloadTimeout      = "reload_timeout"
	EventReloadError        = "reload_error"
)

// WatchOptions configures settings file polling
type WatchOptions struct {
	// PollInterval between file stats, at least MinPollInterval
	PollInterval time.Duration
	// Debounce coalesces bursts of writes into one reload
	Debounce time.Duration
	// MaxWatchers bounds the subscriber channels
	MaxWatchers int
	// ReloadTimeout bounds a single reload
	ReloadTimeout time.Duration
	// VerifyPermissions refuses to reload a file whose group or world bits changed
	VerifyPermissions bool
}

// DefaultWatchOptions returns the standard polling setup
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval:      DefaultPollInterval,
		Debounce:          DefaultDebounce,
		MaxWatchers:       DefaultMaxWatchers,
		ReloadTimeout:     DefaultReloadTimeout,
		VerifyPermissions: true,
	}
}

type watcher struct {
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	opts     WatchOptions
	filePath string

	lastModTime time.Time
	lastSize    int64
	lastMode    os.FileMode

	watching  atomic.Bool
	reloading atomic.Bool
	subs      map[int64]chan string
	nextID    atomic.Int64
	debounce  *time.Timer
}

// Watch polls the loaded settings file and reloads it when it changes. The channel
// receives every path whose current value changed, or one of the Event values.
// Without a loaded file the channel is closed at once.
func (s *Store) Watch(opts WatchOptions) <-chan string {
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.MaxWatchers <= 0 {
		opts.MaxWatchers = DefaultMaxWatchers
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = DefaultReloadTimeout
	}

	s.mutex.Lock()
	if s.filePath == "" {
		s.mutex.Unlock()
		return closedChan()
	}
	if s.watcher != nil && s.watcher.filePath != s.filePath {
		s.watcher.stop()
		s.watcher = nil
	}
	if s.watcher == nil {
		ctx, cancel := context.WithCancel(context.Background())
		w := &watcher{
			ctx:      ctx,
			cancel:   cancel,
			opts:     opts,
			filePath: s.filePath,
			subs:     make(map[int64]chan string),
		}
		if info, err := os.Stat(w.filePath); err == nil {
			w.lastModTime = info.ModTime()
			w.lastSize = info.Size()
			w.lastMode = info.Mode()
		}
		w.watching.Store(true)
		s.watcher = w
		go w.loop(s)
	}
	w := s.watcher
	s.mutex.Unlock()

	return w.subscribe()
}

// StopWatch stops polling and closes every watch channel.
func (s *Store) StopWatch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.watcher != nil {
		s.watcher.stop()
		s.watcher = nil
	}
}

// IsWatching reports whether the settings file is being polled.
func (s *Store) IsWatching() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.watcher != nil && s.watcher.watching.Load()
}

// snapshot copies the current value of every path
func (s *Store) snapshot() map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make(map[string]any, len(s.items))
	for path, it := range s.items {
		out[path] = it.currentValue
	}
	return out
}

func (w *watcher) loop(s *Store) {
	defer w.watching.Store(false)

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.check(s)
		}
	}
}

func (w *watcher) check(s *Store) {
	info, err := os.Stat(w.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			w.notify(EventFileDeleted)
		}
		return
	}

	if w.opts.VerifyPermissions && w.lastMode != 0 && info.Mode()&0077 != w.lastMode&0077 {
		w.lastMode = info.Mode()
		w.notify(EventPermissionsChanged)
		return
	}

	if info.ModTime().Equal(w.lastModTime) && info.Size() == w.lastSize {
		return
	}
	w.lastModTime = info.ModTime()
	w.lastSize = info.Size()
	w.lastMode = info.Mode()

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.opts.Debounce, func() { w.reload(s) })
	w.mu.Unlock()
}

func (w *watcher) reload(s *Store) {
	if !w.reloading.CompareAndSwap(false, true) {
		return
	}
	defer w.reloading.Store(false)

	ctx, cancel := context.WithTimeout(w.ctx, w.opts.ReloadTimeout)
	defer cancel()

	before := s.snapshot()
	done := make(chan error, 1)
	go func() { done <- s.LoadFile(w.filePath) }()

	select {
	case err := <-done:
		if err != nil {
			w.notify(fmt.Sprintf("%s:%v", EventReloadError, err))
			return
		}
		for path, v := range s.snapshot() {
			if old, ok := before[path]; !ok || !reflect.DeepEqual(old, v) {
				w.notify(path)
			}
		}
	case <-ctx.Done():
		if w.ctx.Err() == nil {
			w.notify(EventReloadTimeout)
		}
	}
}

func (w *watcher) subscribe() <-chan string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.subs) >= w.opts.MaxWatchers || w.ctx.Err() != nil {
		return closedChan()
	}

	ch := make(chan string, 10)
	id := w.nextID.Add(1)
	w.subs[id] = ch

	go func() {
		<-w.ctx.Done()
		w.mu.Lock()
		delete(w.subs, id)
		close(ch)
		w.mu.Unlock()
	}()
	return ch
}

// notify never blocks; a full channel misses the event.
func (w *watcher) notify(event string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, ch := range w.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (w *watcher) stop() {
	w.cancel()
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
}

func closedChan() <-chan string {
	ch := make(chan string)
	close(ch)
	return ch
}
