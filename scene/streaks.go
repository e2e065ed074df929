package scene

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"streak-viewer/math"
)

// streakChunk is the number of points generated by one worker task.
const streakChunk = 1 << 18

// StreakCloud is a static point cloud used for the speed effect. Positions are
// generated once and never mutated; the GPU fades each point by its distance
// to the actor.
type StreakCloud struct {
	Positions []float32 // xyz triples
	Count     int
	Spread    float32
	Seed      uint64

	// Point is an optional sprite sampled by every point; nil draws plain white.
	Point *Texture

	// GPUData is set by the renderer backend.
	GPUData interface{}
}

// GenerateStreakCloud fills a cube of side spread centred on the origin with
// count uniformly distributed points. Chunks are generated concurrently, each
// from its own seeded stream, so the result only depends on seed.
func GenerateStreakCloud(ctx context.Context, count int, spread float32, seed uint64) (*StreakCloud, error) {
	if count < 0 {
		return nil, fmt.Errorf("streak cloud: negative count %d", count)
	}
	cloud := &StreakCloud{
		Positions: make([]float32, count*3),
		Count:     count,
		Spread:    spread,
		Seed:      seed,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for start := 0; start < count; start += streakChunk {
		end := min(start+streakChunk, count)
		chunk := uint64(start / streakChunk)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed, chunk))
			dst := cloud.Positions[start*3 : end*3]
			for i := range dst {
				dst[i] = (rng.Float32() - 0.5) * spread
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("streak cloud: %w", err)
	}
	return cloud, nil
}

// StreakAlpha is the opacity of a point at p for an actor at actor. The point
// shader computes the same value.
func StreakAlpha(p, actor math.Vec3, maxDistance float32) float32 {
	return 1 - math.SmoothStep(0, maxDistance, p.Distance(actor))
}
