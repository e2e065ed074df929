package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"streak-viewer/scene"
)

// Kind says which scene slot a loaded asset fills.
type Kind int

const (
	Actor Kind = iota
	Terrain
	Background
	StreakSprite
)

func (k Kind) String() string {
	switch k {
	case Actor:
		return "actor"
	case Terrain:
		return "terrain"
	case Background:
		return "background"
	case StreakSprite:
		return "streak-sprite"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Result is one finished load. Exactly one of Model and Texture is set when
// Err is nil.
type Result struct {
	Kind    Kind
	Path    string
	Model   *scene.Model
	Texture *scene.Texture
	Err     error
}

// Loader decodes assets on background goroutines. Results are handed back over
// a channel and collected on the render thread with Poll, which is where GPU
// upload and scene insertion must happen.
type Loader struct {
	log     *logrus.Logger
	results chan Result
	wg      sync.WaitGroup

	mu      sync.Mutex
	pending int

	// Replaceable in tests.
	loadModel   func(path, name string) (*scene.Model, error)
	loadTexture func(path string, maxWidth int) (*scene.Texture, error)
}

func NewLoader(log *logrus.Logger) *Loader {
	return &Loader{
		log:         log,
		results:     make(chan Result, 8),
		loadModel:   scene.LoadGLTF,
		loadTexture: scene.LoadTexture,
	}
}

// LoadModel starts decoding a glTF file whose root node is named name.
func (l *Loader) LoadModel(ctx context.Context, kind Kind, path, name string) {
	l.start(ctx, kind, path, func() (Result, error) {
		m, err := l.loadModel(path, name)
		return Result{Model: m}, err
	})
}

// LoadTexture starts decoding an image, downscaled to maxWidth when positive.
func (l *Loader) LoadTexture(ctx context.Context, kind Kind, path string, maxWidth int) {
	l.start(ctx, kind, path, func() (Result, error) {
		t, err := l.loadTexture(path, maxWidth)
		return Result{Texture: t}, err
	})
}

func (l *Loader) start(ctx context.Context, kind Kind, path string, load func() (Result, error)) {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()

	l.log.WithFields(logrus.Fields{"kind": kind, "path": path}).Debug("loading asset")
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		res, err := load()
		res.Kind, res.Path, res.Err = kind, path, err
		select {
		case l.results <- res:
		case <-ctx.Done():
			l.done()
		}
	}()
}

func (l *Loader) done() {
	l.mu.Lock()
	l.pending--
	l.mu.Unlock()
}

// Pending is the number of loads not yet collected by Poll.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Poll hands every finished load to fn without blocking and returns how many
// succeeded. Failed loads are logged and never reach fn.
func (l *Loader) Poll(fn func(Result)) int {
	n := 0
	for {
		select {
		case res := <-l.results:
			l.done()
			if res.Err != nil {
				l.log.WithFields(logrus.Fields{"kind": res.Kind, "path": res.Path}).
					WithError(res.Err).Error("asset load failed")
				continue
			}
			if res.Model != nil {
				for _, w := range res.Model.Warnings {
					l.log.WithField("path", res.Path).Warn(w)
				}
			}
			fn(res)
			n++
		default:
			return n
		}
	}
}

// Wait blocks until every started load has either delivered its result or
// been abandoned by context cancellation.
func (l *Loader) Wait() {
	l.wg.Wait()
}
