package watch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// logbookExtensions lists the file extensions the importer understands.
var logbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".csv":  true,
	".tsv":  true,
	".txt":  true,
}

// Watcher watches a drop directory and reports logbook files placed in it.
// Files present when Start is called are reported too, so nothing dropped
// while the worker was down is missed.
type Watcher struct {
	dir      string
	files    chan string
	fw       *fsnotify.Watcher
	stopChan chan struct{}
	wg       sync.WaitGroup

	// settle is how long a file must go without writes before it is
	// reported; uploads via scp or a browser arrive in chunks.
	settle time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
}

// New creates a Watcher for dir
func New(dir string) *Watcher {
	return &Watcher{
		dir:      dir,
		files:    make(chan string, 100),
		stopChan: make(chan struct{}),
		settle:   2 * time.Second,
		pending:  make(map[string]time.Time),
	}
}

// Start begins watching. Existing files are queued first.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fw = fw

	if err := w.scanExisting(); err != nil {
		fw.Close()
		return err
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.settleLoop()
	return nil
}

// Stop stops watching and closes the files channel
func (w *Watcher) Stop() {
	close(w.stopChan)
	if w.fw != nil {
		w.fw.Close()
	}
	w.wg.Wait()
	close(w.files)
}

// Files returns the channel of settled logbook file paths
func (w *Watcher) Files() <-chan string {
	return w.files
}

func isLogbook(path string) bool {
	return logbookExtensions[strings.ToLower(filepath.Ext(path))]
}

func (w *Watcher) scanExisting() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read watch directory: %w", err)
	}
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if isLogbook(path) {
			w.pending[path] = now
		}
	}
	return nil
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isLogbook(event.Name) {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("Watch error: %v", err)
		}
	}
}

// settleLoop reports pending files once they have been quiet long enough
func (w *Watcher) settleLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			now := time.Now()
			var ready []string
			w.mu.Lock()
			for path, last := range w.pending {
				if now.Sub(last) >= w.settle {
					ready = append(ready, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range ready {
				if _, err := os.Stat(path); err != nil {
					continue // removed while settling
				}
				select {
				case w.files <- path:
				case <-w.stopChan:
					return
				}
			}
		}
	}
}
