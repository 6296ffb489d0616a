package debugui

import (
	"reflect"
	"slices"

	"github.com/plus3/voxelvolution/ecs"
)

const maxFieldDepth = 4

// Field describes one exported field of a component struct. Path is the index path from the
// component root and is what an edit is submitted with.
type Field struct {
	Name     string
	Type     reflect.Type
	Path     []int
	Pointer  bool
	Editable bool
	Nested   []Field
}

type componentFields []Field

// fieldsOf returns the exported fields of component type t. Descriptions are cached per registry,
// next to the stores of the types they describe, and belong to the frame thread.
func fieldsOf(r *ecs.Registry, t reflect.Type) []Field {
	cache := ecs.MultitonOf[reflect.Type, componentFields](r)
	if fields, ok := cache.Get(t); ok {
		return fields
	}
	fields := describe(t, nil, 0)
	cache.Set(t, fields)
	return fields
}

func describe(t reflect.Type, parent []int, depth int) []Field {
	if t.Kind() != reflect.Struct || depth > maxFieldDepth {
		return nil
	}

	var fields []Field
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		f := Field{Name: sf.Name, Type: sf.Type, Path: append(slices.Clone(parent), i)}
		switch {
		case sf.Type.Kind() == reflect.Pointer:
			f.Pointer = true
			f.Type = sf.Type.Elem()
		case sf.Type.Kind() == reflect.Struct:
			f.Nested = describe(sf.Type, f.Path, depth+1)
		default:
			f.Editable = editable(sf.Type.Kind())
		}
		fields = append(fields, f)
	}
	return fields
}

// editable reports whether withField can set a field of kind k.
func editable(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
		return true
	}
	return false
}
