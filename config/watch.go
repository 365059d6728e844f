package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
)

// Broadcaster fans a stream of reloaded Documents out to every registered
// receiver, so a supervisor goroutine can swap the running filter/handler
// graph under a write-lock on each reload that Watch triggers when the
// configuration file changes.
type Broadcaster struct {
	input     <-chan *Document
	receivers []chan<- *Document
}

func newBroadcaster(input <-chan *Document) *Broadcaster {
	b := &Broadcaster{input: input}
	go b.listen()
	return b
}

func (b *Broadcaster) listen() {
	for doc := range b.input {
		for _, r := range b.receivers {
			r <- doc
		}
	}
}

// NewReceiver registers a new channel that receives every reloaded
// Document from this point on.
func (b *Broadcaster) NewReceiver() <-chan *Document {
	ch := make(chan *Document, 1)
	b.receivers = append(b.receivers, ch)
	return ch
}

// Watch watches path for changes (following one level of symlink
// indirection, as configuration files are often symlinked to the
// currently-active version) and reloads it on every write, delivering
// successive Documents to the returned Broadcaster. Parse errors are
// logged and do not stop the watch.
func Watch(path string) (*Broadcaster, error) {
	configChan := make(chan *Document)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return nil, err
	}

	realPath, err := filepath.EvalSymlinks(path)
	if err == nil {
		_ = watcher.Add(realPath)
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					close(configChan)
					return
				}
				if ev.Op&fsnotify.Remove == fsnotify.Remove {
					continue
				}
				if ev.Name != path && ev.Name != realPath {
					continue
				}
				glog.Infof("dhcp6d: configuration file changed (%s), reloading", ev.Name)
				doc, err := Load(path)
				if err != nil {
					glog.Errorf("dhcp6d: failed to reload configuration: %v", err)
					continue
				}
				configChan <- doc
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				glog.Errorf("dhcp6d: fsnotify error: %v", err)
			}
		}
	}()

	return newBroadcaster(configChan), nil
}
