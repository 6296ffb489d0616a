package voxel

// Command is an edit queued to a VoxelVolume.
type Command interface {
	isVoxelCommand()
}

// EditKind selects what an Edit does.
type EditKind uint8

const (
	Add EditKind = iota
	Remove
)

// Edit adds or removes the voxel at a coordinate. Done, if set, reports whether the volume
// changed: adding an existing voxel or removing a missing one does nothing.
type Edit struct {
	Kind               EditKind
	Row, Column, Slice int16
	Color              [3]float32
	Done               func(bool)
}

// Func runs arbitrary code against the volume during Update.
type Func func(*VoxelVolume)

func (Edit) isVoxelCommand() {}
func (Func) isVoxelCommand() {}
