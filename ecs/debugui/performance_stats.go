package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/voxelvolution/ecs"
)

func NewPerformanceStats(historyFrames int) PerformanceStats {
	return PerformanceStats{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
		commitHistory: make([]float32, historyFrames),
		frameIndex:    0,
	}
}

func (ps *PerformanceStats) Render(r *ecs.Registry, scheduler *ecs.Scheduler, deltaTime float32) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	var schedulerStats *ecs.SchedulerStats
	if scheduler != nil {
		schedulerStats = scheduler.GetStats()
	}
	ps.record(deltaTime, schedulerStats)

	stats := r.CollectStats()

	imgui.Text(fmt.Sprintf("Entities: %d", len(r.Entities())))
	imgui.Text(fmt.Sprintf("Components: %d across %d types", stats.TotalComponents, stats.ComponentTypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d  Multitons: %d  Event types: %d", stats.SingletonCount, stats.MultitonCount, stats.EventTypeCount))
	if schedulerStats != nil {
		imgui.Text(fmt.Sprintf("Frame: %d", schedulerStats.Frame))
	}

	avgFrameTime := ps.average(ps.frameHistory)
	fps := float32(0)
	if avgFrameTime > 0 {
		fps = 1000.0 / avgFrameTime
	}
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, fps))
	imgui.Text(fmt.Sprintf("Avg Commit Time: %.3f ms", ps.average(ps.commitHistory)))

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))
	imgui.Text("Commit Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##committime", &ps.commitHistory[0], int32(len(ps.commitHistory)))

	if schedulerStats != nil && imgui.TreeNodeStr("System Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, s := range append(schedulerStats.Systems, schedulerStats.Commit) {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(s.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", s.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(s.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(s.MaxDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Store Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("StoreStatsTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Component")
			imgui.TableSetupColumn("Entities")
			imgui.TableHeadersRow()

			for _, s := range stats.Stores {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(s.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", s.Count))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singleton Details") {
		for _, singletonType := range stats.SingletonTypes {
			imgui.BulletText(singletonType)
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (ps *PerformanceStats) record(deltaTime float32, stats *ecs.SchedulerStats) {
	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	if stats != nil {
		ps.commitHistory[ps.frameIndex] = float32(stats.Commit.LastDuration.Seconds() * 1000.0)
	}
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
}

func (ps *PerformanceStats) average(history []float32) float32 {
	var total float32
	for _, v := range history {
		total += v
	}
	return total / float32(len(history))
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
