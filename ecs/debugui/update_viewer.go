package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/voxelvolution/ecs"
)

func NewUpdateSystemViewer() UpdateSystemViewer {
	return UpdateSystemViewer{
		sortColumn:    0,
		sortAscending: true,
	}
}

// Render lists the update system of every component type with its base frame, queued work
// and commit counters.
func (uv *UpdateSystemViewer) Render(r *ecs.Registry) {
	if !imgui.BeginV("Update Systems", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := r.UpdateStats()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("UpdateSystemTable", 7, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Component")
		imgui.TableSetupColumn("Base Frame")
		imgui.TableSetupColumn("Pending Frames")
		imgui.TableSetupColumn("Queued")
		imgui.TableSetupColumn("Entities")
		imgui.TableSetupColumn("Dropped")
		imgui.TableSetupColumn("Last Commit")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			uv.sortColumn = int(spec.ColumnIndex())
			uv.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSpecs.SetSpecsDirty(false)
		}
		uv.sortStats(stats)

		maxEntities := 0
		for _, s := range stats {
			maxEntities = max(maxEntities, s.Entities)
		}

		for _, s := range stats {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(s.Component, uv.selected == s.Component, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				uv.selected = s.Component
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", s.BaseFrame))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", s.PendingFrames))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", s.Queued))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", s.Entities))
			if maxEntities > 0 {
				barWidth := float32(s.Entities) / float32(maxEntities) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", s.Dropped))
			imgui.TableNextColumn()
			imgui.Text(s.LastCommit.String())
		}

		imgui.EndTable()
	}

	for _, s := range stats {
		if s.Component != uv.selected {
			continue
		}
		imgui.Separator()
		imgui.Text(fmt.Sprintf("%s: %d committed, %d removed", s.Component, s.Committed, s.Removed))
	}

	imgui.End()
}

func (uv *UpdateSystemViewer) sortStats(stats []ecs.UpdateSystemStats) {
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		var less bool

		switch uv.sortColumn {
		case 0:
			less = strings.Compare(a.Component, b.Component) < 0
		case 1:
			less = a.BaseFrame < b.BaseFrame
		case 2:
			less = a.PendingFrames < b.PendingFrames
		case 3:
			less = a.Queued < b.Queued
		case 4:
			less = a.Entities < b.Entities
		case 5:
			less = a.Dropped < b.Dropped
		case 6:
			less = a.LastCommit < b.LastCommit
		default:
			less = a.Component < b.Component
		}

		if !uv.sortAscending {
			return !less
		}
		return less
	})
}
