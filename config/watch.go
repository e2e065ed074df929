package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// debounce is how long the file must stay quiet before it is reloaded.
const debounce = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk. Valid configs arrive
// on Updates; parse and validation failures are logged and skipped.
type Watcher struct {
	Updates chan *Config

	path    string
	log     *logrus.Logger
	watcher *fsnotify.Watcher
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch follows path. The parent directory is watched so that editors which
// replace the file by rename are still seen.
func Watch(path string, log *logrus.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		Updates: make(chan *Config, 1),
		path:    abs,
		log:     log,
		watcher: fw,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher; Updates is closed once the goroutine exits.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Updates)

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("config watcher")
		case <-timer.C:
			w.reload()
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.WithError(err).WithField("path", w.path).Warn("config reload rejected")
		return
	}
	// keep only the newest config if the frame loop has not picked up the last one
	select {
	case <-w.Updates:
	default:
	}
	select {
	case w.Updates <- cfg:
		w.log.WithField("path", w.path).Info("config reloaded")
	case <-w.closeCh:
	}
}
