// Package voxel holds editable voxel volumes. Volumes are edited through a command queue and
// expose the faces an external mesher has to draw.
package voxel

import (
	"math"
	"slices"

	"github.com/kamstrup/intmap"

	"github.com/plus3/voxelvolution/ecs"
)

// Key packs a (row, column, slice) coordinate.
type Key uint64

// KeyOf packs a coordinate. Each component keeps its low 16 bits.
func KeyOf(row, column, slice int16) Key {
	return Key(uint64(uint16(row))<<32 | uint64(uint16(column))<<16 | uint64(uint16(slice)))
}

// Coordinates unpacks a key.
func (k Key) Coordinates() (row, column, slice int16) {
	return int16(uint16(k >> 32)), int16(uint16(k >> 16)), int16(uint16(k))
}

// Face names one side of a voxel. Coordinates are relative to the front of the volume: row is
// up and down, column is left and right, slice is depth with positive values away from the
// viewer.
type Face uint8

const (
	Up Face = iota
	Down
	Left
	Right
	Front
	Back
)

var faceNames = [...]string{"up", "down", "left", "right", "front", "back"}

func (f Face) String() string {
	if int(f) < len(faceNames) {
		return faceNames[f]
	}
	return "unknown"
}

// Faces lists every face in declaration order.
var Faces = [...]Face{Up, Down, Left, Right, Front, Back}

// Offset returns the coordinate delta to the neighbor behind f.
func (f Face) Offset() (row, column, slice int16) {
	switch f {
	case Up:
		return 1, 0, 0
	case Down:
		return -1, 0, 0
	case Left:
		return 0, -1, 0
	case Right:
		return 0, 1, 0
	case Front:
		return 0, 0, -1
	case Back:
		return 0, 0, 1
	}
	return 0, 0, 0
}

// Voxel is one filled cell of a volume.
type Voxel struct {
	Color [3]float32
}

// ExposedFace is a voxel face with no neighbor behind it.
type ExposedFace struct {
	Row, Column, Slice int16
	Face               Face
}

// VoxelVolume is a sparse set of voxels owned by one entity. Neighbors are found by key, so
// removing a voxel never leaves a stale link behind. Only Update mutates the volume; queue edits
// from other goroutines through Commands.
type VoxelVolume struct {
	Entity   ecs.EntityId
	Commands *ecs.CommandQueue[Command]

	voxels  *intmap.Map[Key, *Voxel]
	version uint64
}

// New creates an empty volume for entity.
func New(entity ecs.EntityId) *VoxelVolume {
	return &VoxelVolume{
		Entity:   entity,
		Commands: ecs.NewCommandQueue[Command](),
		voxels:   intmap.New[Key, *Voxel](64),
	}
}

// Create creates a volume for entity and stores it in the registry's volume multiton.
func Create(r *ecs.Registry, entity ecs.EntityId) *VoxelVolume {
	v := New(entity)
	Volumes(r).Set(entity, v)
	return v
}

// Volumes returns the registry's volume multiton.
func Volumes(r *ecs.Registry) *ecs.Multiton[ecs.EntityId, *VoxelVolume] {
	return ecs.MultitonOf[ecs.EntityId, *VoxelVolume](r)
}

// QueueCommand queues cmd for the next Update. It is safe from any goroutine.
func (v *VoxelVolume) QueueCommand(cmd Command) {
	v.Commands.QueueCommand(cmd)
}

// Update applies every queued command and returns how many were applied.
func (v *VoxelVolume) Update() int {
	return v.Commands.ProcessCommandQueue(v.apply)
}

func (v *VoxelVolume) apply(cmd Command) {
	switch c := cmd.(type) {
	case Edit:
		var ok bool
		switch c.Kind {
		case Add:
			ok = v.add(c.Row, c.Column, c.Slice, c.Color)
		case Remove:
			ok = v.remove(c.Row, c.Column, c.Slice)
		}
		if c.Done != nil {
			c.Done(ok)
		}
	case Func:
		c(v)
	}
}

func (v *VoxelVolume) add(row, column, slice int16, color [3]float32) bool {
	key := KeyOf(row, column, slice)
	if v.voxels.Has(key) {
		return false
	}
	v.voxels.Put(key, &Voxel{Color: color})
	v.version++
	return true
}

func (v *VoxelVolume) remove(row, column, slice int16) bool {
	key := KeyOf(row, column, slice)
	if !v.voxels.Has(key) {
		return false
	}
	v.voxels.Del(key)
	v.version++
	return true
}

// Get returns the voxel at a coordinate, or nil.
func (v *VoxelVolume) Get(row, column, slice int16) *Voxel {
	voxel, _ := v.voxels.Get(KeyOf(row, column, slice))
	return voxel
}

// Neighbor returns the voxel behind face f of the cell at a coordinate, or nil. Cells past the
// int16 coordinate range have no neighbors.
func (v *VoxelVolume) Neighbor(row, column, slice int16, f Face) *Voxel {
	dr, dc, ds := f.Offset()
	r, okR := step(row, dr)
	c, okC := step(column, dc)
	s, okS := step(slice, ds)
	if !okR || !okC || !okS {
		return nil
	}
	return v.Get(r, c, s)
}

func step(at, delta int16) (int16, bool) {
	next := int32(at) + int32(delta)
	if next < math.MinInt16 || next > math.MaxInt16 {
		return 0, false
	}
	return int16(next), true
}

// Len returns the number of voxels.
func (v *VoxelVolume) Len() int {
	return v.voxels.Len()
}

// Version increases every time the volume changes.
func (v *VoxelVolume) Version() uint64 {
	return v.version
}

// Keys returns the keys of every voxel in increasing order.
func (v *VoxelVolume) Keys() []Key {
	keys := make([]Key, 0, v.voxels.Len())
	v.voxels.ForEach(func(k Key, _ *Voxel) bool {
		keys = append(keys, k)
		return true
	})
	slices.Sort(keys)
	return keys
}

// ExposedFaces returns every voxel face without a neighbor, ordered by voxel key then face.
func (v *VoxelVolume) ExposedFaces() []ExposedFace {
	var faces []ExposedFace
	for _, key := range v.Keys() {
		row, column, slice := key.Coordinates()
		for _, f := range Faces {
			if v.Neighbor(row, column, slice, f) == nil {
				faces = append(faces, ExposedFace{Row: row, Column: column, Slice: slice, Face: f})
			}
		}
	}
	return faces
}
