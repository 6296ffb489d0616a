package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/voxelvolution/ecs"
)

func NewQueryDebugger() QueryDebugger {
	return QueryDebugger{
		selectedComponentTypes: make(map[reflect.Type]bool),
	}
}

// Render lets the user pick component types and lists the entities that have all of them.
func (qd *QueryDebugger) Render(r *ecs.Registry) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selectedComponentTypes = make(map[reflect.Type]bool)
	}

	types := r.ComponentTypes()
	for _, compType := range types {
		selected := qd.selectedComponentTypes[compType]
		if imgui.Checkbox(compType.String(), &selected) {
			if selected {
				qd.selectedComponentTypes[compType] = true
			} else {
				delete(qd.selectedComponentTypes, compType)
			}
		}
	}

	imgui.Separator()

	if len(qd.selectedComponentTypes) == 0 {
		imgui.Text("Select at least one component type")
		imgui.End()
		return
	}

	matches := qd.matchingEntities(r)
	imgui.Text(fmt.Sprintf("Matching entities: %d", len(matches)))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("QueryResults", 1, tableFlags, imgui.NewVec2(0, 200), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableHeadersRow()
		for _, id := range matches {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", id))
		}
		imgui.EndTable()
	}

	imgui.End()
}

func (qd *QueryDebugger) matchingEntities(r *ecs.Registry) []ecs.EntityId {
	var matches []ecs.EntityId
	for _, id := range r.Entities() {
		components := r.EntityComponents(id)
		all := true
		for t := range qd.selectedComponentTypes {
			if _, ok := components[t]; !ok {
				all = false
				break
			}
		}
		if all {
			matches = append(matches, id)
		}
	}
	return matches
}
