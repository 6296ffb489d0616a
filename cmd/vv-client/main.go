// Command vv-client runs a headless simulation that walks the player in a circle and
// replicates its pose through the relay every frame.
package main

import (
	"bufio"
	"context"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/voxelvolution/config"
	"github.com/plus3/voxelvolution/ecs"
	"github.com/plus3/voxelvolution/message"
	"github.com/plus3/voxelvolution/metrics"
	"github.com/plus3/voxelvolution/netsync"
	"github.com/plus3/voxelvolution/transform"
)

// walk moves the player along a circle of radius 10, facing along the path.
type walk struct {
	player ecs.EntityId
	angle  float64
}

func (w *walk) Execute(frame *ecs.UpdateFrame) {
	w.angle += frame.DeltaTime
	position := mgl32.Vec3{float32(10 * math.Cos(w.angle)), 0, float32(10 * math.Sin(w.angle))}
	next := transform.At(position).SetRotation(mgl32.Vec3{0, float32(-w.angle), 0})
	ecs.Submit(frame.Entity(w.player), next, ecs.NextFrame)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := cfg.Logger()
	player := ecs.EntityId(cfg.PlayerId)

	if cfg.StatsdAddress != "" {
		if err := metrics.Init(cfg.StatsdAddress, []string{"role:client"}); err != nil {
			logger.Warn().Err(err).Msg("statsd disabled")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := netsync.Dial(ctx, cfg.ServerAddress, netsync.WithClientLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to relay")
	}
	defer client.Close()

	registry := ecs.NewRegistry(ecs.WithLogger(logger))
	ecs.RegisterComponent[transform.Transform](registry)
	ecs.RegisterComponent[transform.Position](registry)
	ecs.RegisterComponent[transform.Orientation](registry)

	rep := netsync.NewReplicator(registry, client)
	netsync.Register[transform.Position](rep, message.TypePositionChange, message.TypePositionRemoval)
	netsync.Register[transform.Orientation](rep, message.TypeOrientationChange, message.TypeOrientationRemoval)
	rep.Own(player)

	chats := ecs.NewEventQueue[netsync.Chat]()
	ecs.EventsOf[netsync.Chat](registry).SubscribeAll(chats)

	scheduler := ecs.NewScheduler(registry,
		ecs.WithObserver(rep),
		ecs.WithObserver(metrics.NewObserver(nil, logger)),
		ecs.WithSlowFrameThreshold(cfg.FrameInterval()),
	)
	scheduler.Register(&walk{player: player})
	scheduler.Register(&transform.PosePublisher{Entities: []ecs.EntityId{player}})
	scheduler.Register(&transform.PoseApplier{Local: rep.Owns})
	scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		chats.ProcessEventQueue(func(_ ecs.EntityId, chat netsync.Chat) {
			logger.Info().Int64("frame", int64(chat.Frame)).Str("text", chat.Text).Msg("chat")
		})
	}))
	lines := ecs.NewCommandQueue[string]()
	scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		lines.ProcessCommandQueue(func(line string) {
			if err := rep.Chat(frame.Frame, line); err != nil {
				logger.Warn().Err(err).Msg("failed to send chat")
			}
		})
	}))

	ecs.Add(registry.Entity(player), transform.New())
	if err := rep.Chat(scheduler.Frame(), "player joined"); err != nil {
		logger.Warn().Err(err).Msg("failed to send greeting")
	}

	g, gctx := errgroup.WithContext(ctx)
	// Not part of the group: a blocked stdin read must not hold up shutdown.
	go readChat(os.Stdin, lines)
	g.Go(func() error {
		return client.Run(gctx, rep)
	})
	g.Go(func() error {
		logger.Info().Uint64("player", uint64(player)).Float64("rate", cfg.FrameRate).Msg("simulation running")
		scheduler.Run(gctx, cfg.FrameInterval())
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("client stopped")
		os.Exit(1)
	}
	logger.Info().Int64("frames", int64(scheduler.Frame())).Msg("client stopped")
}

// readChat queues every non-empty line read from r as a chat message.
func readChat(r io.Reader, lines *ecs.CommandQueue[string]) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines.QueueCommand(line)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Msg("stopped reading chat input")
	}
}
