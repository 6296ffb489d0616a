// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// Its windows inspect a registry: entities, committed components, pending updates and frame
// timings. Edits made in the inspector are submitted to the next frame like any other write.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/voxelvolution/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a singleton.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem renders every ImguiItem component and updates the ImguiInputState singleton.
// It must run between the backend's BeginFrame and EndFrame.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

// Execute updates input state and runs all ImGui render functions.
func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	state := i.InputState.Get()
	if state == nil {
		state = ecs.NewSingleton[ImguiInputState](frame.Registry).Get()
	}
	state.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	state.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()

	for _, item := range i.Items.Iter() {
		if item.ImguiItem.Render != nil {
			item.ImguiItem.Render()
		}
	}
}
