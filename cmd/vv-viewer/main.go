// Command vv-viewer opens a window showing a voxel platform, the local camera and any remote
// players, with the ECS inspector windows on top.
package main

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/plus3/voxelvolution/config"
	"github.com/plus3/voxelvolution/ecs"
	"github.com/plus3/voxelvolution/ecs/debugui"
	debugui_ebiten "github.com/plus3/voxelvolution/ecs/debugui/ebiten"
	"github.com/plus3/voxelvolution/input"
	"github.com/plus3/voxelvolution/message"
	"github.com/plus3/voxelvolution/netsync"
	"github.com/plus3/voxelvolution/render"
	"github.com/plus3/voxelvolution/transform"
	"github.com/plus3/voxelvolution/voxel"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	platformId   = ecs.EntityId(1 << 32)
	debugUIId    = platformId + 1
)

var keys = map[ebiten.Key]input.Key{
	ebiten.KeyA:      input.KeyA,
	ebiten.KeyD:      input.KeyD,
	ebiten.KeyS:      input.KeyS,
	ebiten.KeyW:      input.KeyW,
	ebiten.KeySpace:  input.KeySpace,
	ebiten.KeyEscape: input.KeyEscape,
}

type Game struct {
	registry  *ecs.Registry
	scheduler *ecs.Scheduler
	render    *render.RenderSystem
	camera    *render.Camera
	drawer    *quadDrawer
	backend   debugui_ebiten.ImguiBackend
	input     *ecs.Singleton[debugui.ImguiInputState]
	rate      float64
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustReleased(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.backend.BeginFrame()
	if state := g.input.Get(); state == nil || !state.WantCaptureKeyboard {
		g.emitKeys()
	}
	g.scheduler.Once(1.0 / g.rate)
	g.backend.EndFrame()
	return nil
}

func (g *Game) emitKeys() {
	for ek, key := range keys {
		if inpututil.IsKeyJustPressed(ek) {
			input.Emit(g.registry, input.KeyboardEvent{Action: input.Press, Key: key})
		}
		if inpututil.IsKeyJustReleased(ek) {
			input.Emit(g.registry, input.KeyboardEvent{Action: input.Release, Key: key})
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawer.screen = screen
	g.render.SetViewportSize(screen.Bounds().Dx(), screen.Bounds().Dy())
	g.render.Update(1.0 / g.rate)

	eye := g.camera.ViewMatrix().Inv().Col(3)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("camera %.1f %.1f %.1f", eye.X(), eye.Y(), eye.Z()), 8, screen.Bounds().Dy()-20)
	g.backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// remotePlayers gives every entity whose transform was created by replication a model matrix
// and the player mesh.
type remotePlayers struct {
	render   *render.RenderSystem
	events   *ecs.EventQueue[transform.TransformChangedEvent]
	local    func(ecs.EntityId) bool
	material *render.Material
	mesh     *render.VertexBuffer
}

func (p *remotePlayers) Execute(frame *ecs.UpdateFrame) {
	p.events.ProcessEventQueue(func(id ecs.EntityId, ev transform.TransformChangedEvent) {
		if ev.Old != nil || ev.New == nil || p.local(id) {
			return
		}
		p.render.QueueCommand(render.AddModelMatrix{Entity: id})
		p.render.QueueCommand(render.AddVertexBuffer{Material: p.material, Buffer: p.mesh, Entity: id})
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := cfg.Logger()
	player := ecs.EntityId(cfg.PlayerId)

	registry := ecs.NewRegistry(ecs.WithLogger(logger))
	ecs.RegisterComponent[transform.Transform](registry)
	ecs.RegisterComponent[transform.Position](registry)
	ecs.RegisterComponent[transform.Orientation](registry)
	debugui.RegisterDebugUIComponents(registry)

	backend := debugui_ebiten.NewImguiBackend("voxelvolution", screenWidth, screenHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	drawer := &quadDrawer{}
	rs := render.New(registry, drawer)
	camera := render.NewCamera(rs, player)

	voxels := render.NewMaterial("voxels", "voxel")
	render.Materials(registry).Set(voxels.Name, voxels)
	wire := render.NewMaterial("players", "voxel")
	wire.SetFillMode(render.Line)
	render.Materials(registry).Set(wire.Name, wire)

	platform := buildPlatform(registry)
	ecs.Add(registry.Entity(platformId), transform.At(transform.Forward.Mul(12)).Translate(transform.Up.Mul(-3)))
	rs.QueueCommand(render.AddModelMatrix{Entity: platformId})
	rs.QueueCommand(render.AddVertexBuffer{Material: voxels, Buffer: platform, Entity: platformId})
	rs.QueueCommand(render.ActivateView{Entity: player})

	playerMesh := voxel.New(0)
	playerMesh.QueueCommand(voxel.Edit{Kind: voxel.Add, Color: [3]float32{1, 1, 1}})
	playerMesh.Update()

	rep := connect(logger, registry, cfg.ServerAddress, player)

	mover := input.NewCameraMover(registry, camera)
	transforms := ecs.NewEventQueue[transform.TransformChangedEvent]()
	ecs.EventsOf[transform.TransformChangedEvent](registry).SubscribeAll(transforms)

	scheduler := ecs.NewScheduler(registry, ecs.WithObserver(rep))
	scheduler.Register(mover)
	scheduler.Register(&transform.PosePublisher{Entities: []ecs.EntityId{player}})
	scheduler.Register(&transform.PoseApplier{Local: rep.Owns})
	scheduler.Register(&remotePlayers{
		render:   rs,
		events:   transforms,
		local:    rep.Owns,
		material: wire,
		mesh:     playerMesh.Mesh("player"),
	})
	scheduler.Register(&debugui.ImguiSystem{})
	debugui.SpawnDebugUI(registry, scheduler, debugUIId)

	game := &Game{
		registry:  registry,
		scheduler: scheduler,
		render:    rs,
		camera:    camera,
		drawer:    drawer,
		backend:   backend,
		input:     ecs.NewSingleton[debugui.ImguiInputState](registry),
		rate:      cfg.FrameRate,
	}
	ebiten.SetTPS(int(cfg.FrameRate))

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal().Err(err).Msg("viewer stopped")
	}
}

// buildPlatform fills a checkered 16x16 floor of voxels and returns its mesh.
func buildPlatform(r *ecs.Registry) *render.VertexBuffer {
	platform := voxel.Create(r, platformId)
	for column := int16(-8); column < 8; column++ {
		for slice := int16(-8); slice < 8; slice++ {
			c := [3]float32{0.3, 0.7, 0.4}
			if (column+slice)%2 == 0 {
				c = [3]float32{0.5, 0.9, 0.5}
			}
			platform.QueueCommand(voxel.Edit{Kind: voxel.Add, Column: column, Slice: slice, Color: c})
		}
	}
	platform.Update()

	mesh := platform.Mesh("platform")
	render.VertexBuffers(r).Set(mesh.Name, mesh)
	return mesh
}

// connect joins the relay when an address is configured. Without a relay the replicator only
// collects changes. The player is owned before any message is read.
func connect(logger zerolog.Logger, r *ecs.Registry, address string, player ecs.EntityId) *netsync.Replicator {
	if address == "" {
		return newReplicator(r, nil, player)
	}
	client, err := netsync.Dial(context.Background(), address, netsync.WithClientLogger(logger))
	if err != nil {
		logger.Warn().Err(err).Str("address", address).Msg("running offline")
		return newReplicator(r, nil, player)
	}

	rep := newReplicator(r, client, player)
	go func() {
		if err := client.Run(context.Background(), rep); err != nil {
			logger.Warn().Err(err).Msg("disconnected from relay")
		}
	}()
	return rep
}

func newReplicator(r *ecs.Registry, sender netsync.Sender, player ecs.EntityId) *netsync.Replicator {
	rep := netsync.NewReplicator(r, sender)
	netsync.Register[transform.Position](rep, message.TypePositionChange, message.TypePositionRemoval)
	netsync.Register[transform.Orientation](rep, message.TypeOrientationChange, message.TypeOrientationRemoval)
	rep.Own(player)
	return rep
}
