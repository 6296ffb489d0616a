package debugui

import "github.com/plus3/voxelvolution/ecs"

// DebugUI groups the inspector windows of one registry.
type DebugUI struct {
	Browser     EntityBrowser
	Inspector   ComponentInspector
	Updates     UpdateSystemViewer
	Performance PerformanceStats
	Queries     QueryDebugger

	registry  *ecs.Registry
	scheduler *ecs.Scheduler
	timer     *FrameTimer
}

// New creates the windows for r. scheduler may be nil, in which case no system timings are
// shown.
func New(r *ecs.Registry, scheduler *ecs.Scheduler) *DebugUI {
	return &DebugUI{
		Browser:     NewEntityBrowser(100),
		Inspector:   NewComponentInspector(),
		Updates:     NewUpdateSystemViewer(),
		Performance: NewPerformanceStats(120),
		Queries:     NewQueryDebugger(),
		registry:    r,
		scheduler:   scheduler,
		timer:       NewFrameTimer(),
	}
}

// Render draws every window.
func (d *DebugUI) Render() {
	d.Browser.Render(d.registry)
	d.Inspector.Render(d.registry, d.Browser.GetSelectedEntity())
	d.Updates.Render(d.registry)
	d.Performance.Render(d.registry, d.scheduler, d.timer.GetDeltaTime())
	d.Queries.Render(d.registry)
}

// SpawnDebugUI attaches the debug windows of r to entity as an ImguiItem, so an ImguiSystem
// registered with scheduler draws them.
func SpawnDebugUI(r *ecs.Registry, scheduler *ecs.Scheduler, entity ecs.EntityId) *DebugUI {
	ui := New(r, scheduler)
	ecs.Add(r.Entity(entity), ImguiItem{Render: ui.Render})
	return ui
}

func RegisterDebugUIComponents(r *ecs.Registry) {
	ecs.RegisterComponent[ImguiItem](r)
}
