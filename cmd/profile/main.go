// Profiling:
// go build ./cmd/profile
// go tool pprof -http=":8000" -nodefraction=0.001 ./profile mem.pprof

package main

import (
	"github.com/pkg/profile"
	"github.com/voxelite/ecsquery"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

func main() {
	rounds := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

// run exercises the borrow-acquire/iterate/release path a real system
// drives every frame: a two-component write query over a fixed population,
// rebuilt each iteration so the archetype fan-out in World.archetypeList
// is walked fresh every time rather than cached across iterations.
func run(rounds, iters, numEntities int) {
	for range rounds {
		w := ecsquery.NewWorld()
		ecsquery.SpawnWith1[position](w, numEntities, func(i int) position {
			return position{X: float64(i)}
		})
		for _, e := range iterEntities(w, numEntities) {
			ecsquery.SetComponent(w, e, velocity{X: 1})
		}

		for range iters {
			q := ecsquery.NewQuery2[*position, ecsquery.Write[position], *velocity, ecsquery.Read[velocity]](
				w, ecsquery.Write[position]{}, ecsquery.Read[velocity]{},
			)
			it := q.Iter()
			for {
				_, item, ok := it.Next()
				if !ok {
					break
				}
				item.A.X += item.B.X
				item.A.Y += item.B.Y
			}
			q.Close()
		}
	}
}

func iterEntities(w *ecsquery.World, n int) []ecsquery.Entity {
	q := ecsquery.ReadOnly[position](w)
	it := q.Iter()
	out := make([]ecsquery.Entity, 0, n)
	for {
		e, _, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, e)
	}
	q.Close()
	return out
}
