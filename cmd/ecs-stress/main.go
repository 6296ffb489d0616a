// Command ecs-stress measures frame commit cost while many goroutines submit component
// updates concurrently.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/voxelvolution/ecs"
	"github.com/plus3/voxelvolution/transform"
)

type Velocity struct {
	X, Y, Z float32
}

// integrate moves every entity by its velocity, submitting the result to the next frame.
type integrate struct {
	Bodies ecs.Query[struct {
		*transform.Position
		*Velocity
	}]
}

func (s *integrate) Execute(frame *ecs.UpdateFrame) {
	updates := ecs.UpdatesOf[transform.Position](frame.Registry)
	dt := float32(frame.DeltaTime)
	for id, body := range s.Bodies.Iter() {
		updates.SubmitUpdate(id, transform.Position{
			X: body.Position.X + body.Velocity.X*dt,
			Y: body.Position.Y + body.Velocity.Y*dt,
			Z: body.Position.Z + body.Velocity.Z*dt,
		}, ecs.NextFrame)
	}
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	producers := flag.Int("producers", runtime.GOMAXPROCS(0), "The number of goroutines submitting updates.")
	lookahead := flag.Int("lookahead", 8, "The largest number of frames ahead a producer schedules.")
	batch := flag.Int("batch", 100, "The number of submissions a producer makes between pauses.")
	pause := flag.Duration("pause", 100*time.Microsecond, "How long a producer sleeps after each batch.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	logger.Info().Msg("starting ECS stress test")

	// 1. Setup Registry and Scheduler
	registry := ecs.NewRegistry(ecs.WithLogger(logger))
	ecs.RegisterComponent[transform.Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	scheduler := ecs.NewScheduler(registry)
	scheduler.Register(&integrate{})

	// 2. Populate the first frame
	logger.Info().Int("entities", *entityCount).Msg("populating registry")
	for i := range *entityCount {
		id := ecs.EntityId(i + 1)
		ecs.Add(registry.Entity(id), transform.Position{X: rand.Float32(), Y: rand.Float32(), Z: rand.Float32()})
		if i%2 == 0 {
			ecs.Add(registry.Entity(id), Velocity{X: 1, Y: rand.Float32()})
		}
	}

	// 3. Run the simulation loop while producers submit
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Components:     len(registry.ComponentTypes()),
		Producers:      *producers,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info().Dur("duration", *duration).Int("producers", *producers).Msg("running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	var submitted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	velocities := ecs.UpdatesOf[Velocity](registry)
	for range *producers {
		g.Go(func() error {
			for gctx.Err() == nil {
				for range *batch {
					id := ecs.EntityId(rand.IntN(*entityCount) + 1)
					// Targets around the base frame, so some submissions arrive too late.
					frame := velocities.BaseFrame() + ecs.FrameId(rand.IntN(*lookahead+2)-1)
					velocities.SubmitUpdate(id, Velocity{X: rand.Float32(), Y: rand.Float32(), Z: rand.Float32()}, frame)
				}
				submitted.Add(int64(*batch))
				time.Sleep(*pause)
			}
			return nil
		})
	}

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			scheduler.Once(float64(deltaTime) / float64(time.Second))
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("producer failed")
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.Submitted = submitted.Load()
	for _, s := range registry.UpdateStats() {
		report.Committed += s.Committed
		report.Dropped += s.Dropped
	}
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info().Msg("simulation finished")

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("failed to generate report")
	}
	fmt.Println("--- End of Report ---")
}
