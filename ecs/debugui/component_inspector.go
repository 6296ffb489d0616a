package debugui

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/voxelvolution/ecs"
)

func NewComponentInspector() ComponentInspector {
	return ComponentInspector{}
}

// Render shows the committed components of the selected entity. Edited fields are applied to
// a copy of the component which is submitted to the next frame, so the displayed value changes
// once that frame commits.
func (ci *ComponentInspector) Render(r *ecs.Registry, selectedEntityId ecs.EntityId) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntityId = selectedEntityId

	if ci.selectedEntityId == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	components := r.EntityComponents(ci.selectedEntityId)
	if len(components) == 0 {
		imgui.Text(fmt.Sprintf("Entity %d has no committed components", ci.selectedEntityId))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d", ci.selectedEntityId))
	imgui.Text(fmt.Sprintf("Edits submitted: %d", ci.pendingEdits))
	imgui.Separator()

	types := make([]reflect.Type, 0, len(components))
	for t := range components {
		types = append(types, t)
	}
	slices.SortFunc(types, func(a, b reflect.Type) int { return strings.Compare(a.String(), b.String()) })

	for _, compType := range types {
		if imgui.TreeNodeStr(compType.String()) {
			ci.renderComponent(r, components[compType], compType)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspector) renderComponent(r *ecs.Registry, component any, compType reflect.Type) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		imgui.Text(fmt.Sprintf("%v", val.Interface()))
		return
	}

	for _, field := range fieldsOf(r, compType) {
		ci.renderField(r, val, field, component)
	}
}

func (ci *ComponentInspector) renderField(r *ecs.Registry, root reflect.Value, field Field, component any) {
	name := field.Name
	val := root.FieldByIndex(field.Path)

	if field.Pointer {
		if val.IsNil() {
			imgui.Text(fmt.Sprintf("%s: nil", name))
		} else {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Elem().Interface()))
		}
		return
	}

	if val.Kind() == reflect.Struct {
		if imgui.TreeNodeStr(name) {
			for _, nested := range field.Nested {
				ci.renderField(r, root, nested, component)
			}
			imgui.TreePop()
		}
		return
	}

	if !field.Editable {
		switch val.Kind() {
		case reflect.Map:
			imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))
		default:
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		}
		return
	}

	id := fmt.Sprintf("##%s%v", name, field.Path)
	path := field.Path
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(id, &v) {
			ci.submitEdit(r, component, path, reflect.ValueOf(int64(v)))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(id, &v) && v >= 0 {
			ci.submitEdit(r, component, path, reflect.ValueOf(uint64(v)))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(id, &v) {
			ci.submitEdit(r, component, path, reflect.ValueOf(float64(v)))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name+id, &v) {
			ci.submitEdit(r, component, path, reflect.ValueOf(v))
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(id, "", &v, imgui.InputTextFlagsNone, nil) {
			ci.submitEdit(r, component, path, reflect.ValueOf(v))
		}
	}
}

func (ci *ComponentInspector) submitEdit(r *ecs.Registry, component any, path []int, value reflect.Value) {
	edited, ok := withField(component, path, value)
	if !ok {
		return
	}
	if r.SubmitAny(ci.selectedEntityId, edited, ecs.NextFrame) {
		ci.pendingEdits++
	}
}

// withField returns a pointer to a copy of component with the field at path set to value,
// converted to the field's kind. component must be a pointer to a struct.
func withField(component any, path []int, value reflect.Value) (any, bool) {
	src := reflect.ValueOf(component)
	if src.Kind() != reflect.Ptr || src.IsNil() || src.Elem().Kind() != reflect.Struct {
		return nil, false
	}

	dst := reflect.New(src.Elem().Type())
	dst.Elem().Set(src.Elem())

	field := dst.Elem().FieldByIndex(path)
	if !field.CanSet() {
		return nil, false
	}

	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !value.CanInt() {
			return nil, false
		}
		field.SetInt(value.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !value.CanUint() {
			return nil, false
		}
		field.SetUint(value.Uint())
	case reflect.Float32, reflect.Float64:
		if !value.CanFloat() {
			return nil, false
		}
		field.SetFloat(value.Float())
	case reflect.Bool:
		if value.Kind() != reflect.Bool {
			return nil, false
		}
		field.SetBool(value.Bool())
	case reflect.String:
		if value.Kind() != reflect.String {
			return nil, false
		}
		field.SetString(value.String())
	default:
		return nil, false
	}

	return dst.Interface(), true
}
