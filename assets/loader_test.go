package assets

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streak-viewer/scene"
)

func testLoader() *Loader {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewLoader(log)
}

func pollUntil(t *testing.T, l *Loader, want int) []Result {
	t.Helper()
	var got []Result
	require.Eventually(t, func() bool {
		l.Poll(func(r Result) { got = append(got, r) })
		return len(got) >= want && l.Pending() == 0
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestLoaderDeliversResults(t *testing.T) {
	l := testLoader()
	l.loadModel = func(path, name string) (*scene.Model, error) {
		return &scene.Model{Root: scene.NewNode(name), Warnings: []string{"skipped a primitive"}}, nil
	}
	l.loadTexture = func(path string, maxWidth int) (*scene.Texture, error) {
		return &scene.Texture{Name: path, Width: maxWidth}, nil
	}

	ctx := context.Background()
	l.LoadModel(ctx, Actor, "models/Dog.glb", "dog")
	l.LoadTexture(ctx, Background, "images/sky.hdr", 2048)

	got := pollUntil(t, l, 2)
	require.Len(t, got, 2)
	byKind := map[Kind]Result{}
	for _, r := range got {
		byKind[r.Kind] = r
	}
	assert.Equal(t, "dog", byKind[Actor].Model.Root.Name)
	assert.Equal(t, 2048, byKind[Background].Texture.Width)
	assert.Equal(t, "images/sky.hdr", byKind[Background].Path)
}

func TestLoaderFailureNeverArrives(t *testing.T) {
	l := testLoader()
	l.loadModel = func(string, string) (*scene.Model, error) {
		return nil, errors.New("truncated file")
	}

	l.LoadModel(context.Background(), Terrain, "models/World_poly.glb", "terrain")
	l.Wait()

	called := false
	n := l.Poll(func(Result) { called = true })
	assert.Zero(t, n)
	assert.False(t, called)
	assert.Zero(t, l.Pending())
}

func TestLoaderCancelled(t *testing.T) {
	l := testLoader()
	l.results = make(chan Result) // nobody polls, so the send would block
	release := make(chan struct{})
	l.loadTexture = func(string, int) (*scene.Texture, error) {
		<-release
		return &scene.Texture{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.LoadTexture(ctx, StreakSprite, "images/white_texture.jpg", 0)
	assert.Equal(t, 1, l.Pending())

	cancel()
	close(release)
	l.Wait()
	assert.Zero(t, l.Pending())
}

func TestLoaderRealTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sky.hdr")
	data := []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1 +X 2\n")
	data = append(data, 128, 128, 128, 129, 0, 0, 0, 0)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	l := testLoader()
	l.LoadTexture(context.Background(), Background, path, 0)
	got := pollUntil(t, l, 1)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Texture.Width)
	assert.Equal(t, 1, got[0].Texture.Height)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "actor", Actor.String())
	assert.Equal(t, "streak-sprite", StreakSprite.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
