package voxel_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/voxelvolution/ecs"
	"github.com/plus3/voxelvolution/voxel"
)

func TestKeyPacking(t *testing.T) {
	for _, c := range [][3]int16{{0, 0, 0}, {1, 2, 3}, {-1, -2, -3}, {32767, -32768, 7}} {
		row, column, slice := voxel.KeyOf(c[0], c[1], c[2]).Coordinates()
		assert.Equal(t, c, [3]int16{row, column, slice})
	}
	assert.Equal(t, voxel.Key(1<<32|2<<16|3), voxel.KeyOf(1, 2, 3))
	assert.NotEqual(t, voxel.KeyOf(0, 0, 1), voxel.KeyOf(0, 1, 0))
}

func TestEditThroughCommandQueue(t *testing.T) {
	volume := voxel.New(1)

	var results []bool
	done := func(ok bool) { results = append(results, ok) }
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Done: done})
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Done: done})
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Slice: 1, Done: done})
	volume.QueueCommand(voxel.Edit{Kind: voxel.Remove, Row: 5, Done: done})

	assert.Zero(t, volume.Len(), "edits apply only on Update")
	assert.Equal(t, 4, volume.Update())

	assert.Equal(t, []bool{true, false, true, false}, results)
	assert.Equal(t, 2, volume.Len())
	assert.Equal(t, uint64(2), volume.Version())
}

func TestNeighborsByKey(t *testing.T) {
	volume := voxel.New(1)
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add})
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Row: 1})
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Slice: -1})
	volume.Update()

	assert.NotNil(t, volume.Neighbor(0, 0, 0, voxel.Up))
	assert.NotNil(t, volume.Neighbor(0, 0, 0, voxel.Front))
	assert.NotNil(t, volume.Neighbor(1, 0, 0, voxel.Down))
	assert.Nil(t, volume.Neighbor(0, 0, 0, voxel.Left))

	volume.QueueCommand(voxel.Edit{Kind: voxel.Remove, Row: 1})
	volume.Update()
	assert.Nil(t, volume.Neighbor(0, 0, 0, voxel.Up))
	assert.Nil(t, volume.Get(1, 0, 0))
}

func TestNeighborAtCoordinateLimits(t *testing.T) {
	volume := voxel.New(1)
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Row: math.MaxInt16})
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Row: math.MinInt16})
	volume.Update()

	assert.Nil(t, volume.Neighbor(math.MaxInt16, 0, 0, voxel.Up))
	assert.Nil(t, volume.Neighbor(math.MinInt16, 0, 0, voxel.Down))
	assert.Len(t, volume.ExposedFaces(), 12)
}

func TestExposedFaces(t *testing.T) {
	volume := voxel.New(1)
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add})
	volume.Update()
	assert.Len(t, volume.ExposedFaces(), 6)

	volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Column: 1})
	volume.Update()

	faces := volume.ExposedFaces()
	assert.Len(t, faces, 10)
	for _, f := range faces {
		if f.Column == 0 {
			assert.NotEqual(t, voxel.Right, f.Face)
		} else {
			assert.NotEqual(t, voxel.Left, f.Face)
		}
	}
	assert.Equal(t, voxel.ExposedFace{Face: voxel.Up}, faces[0])
}

func TestConcurrentEdits(t *testing.T) {
	volume := voxel.New(1)

	var g errgroup.Group
	for row := range int16(10) {
		g.Go(func() error {
			for column := range int16(10) {
				volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Row: row, Column: column})
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 100, volume.Update())
	assert.Equal(t, 100, volume.Len())
}

func TestFuncAndRegistry(t *testing.T) {
	registry := ecs.NewRegistry()
	volume := voxel.Create(registry, 4)

	got, ok := voxel.Volumes(registry).Get(4)
	require.True(t, ok)
	assert.Same(t, volume, got)

	var seen *voxel.VoxelVolume
	volume.QueueCommand(voxel.Func(func(v *voxel.VoxelVolume) { seen = v }))
	volume.Update()
	assert.Same(t, volume, seen)
	assert.Equal(t, "back", voxel.Back.String())
}

func TestMesh(t *testing.T) {
	volume := voxel.New(1)
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Color: [3]float32{1, 0.5, 0}})
	volume.QueueCommand(voxel.Edit{Kind: voxel.Add, Slice: 1})
	volume.Update()

	buffer := volume.Mesh("platform")
	assert.Equal(t, "platform", buffer.Name)
	assert.Len(t, buffer.Vertices, 4*10)
	assert.Equal(t, 6*10, buffer.IndexCount())

	// The first exposed face is the top of the voxel at the origin.
	top := buffer.Vertices[:4]
	for _, v := range top {
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, v.Normal)
		assert.InDelta(t, 0.5, v.Position.Y(), 1e-6)
		assert.Equal(t, mgl32.Vec2{1, 0.5}, v.UV)
	}
	u := top[1].Position.Sub(top[0].Position)
	w := top[3].Position.Sub(top[0].Position)
	assert.InDelta(t, 1, u.Cross(w).Dot(mgl32.Vec3{0, 1, 0}), 1e-6, "quads wind around the outward normal")

	assert.Equal(t, mgl32.Vec3{0, 0, -1}, voxel.Back.Normal())
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, voxel.Position(0, 0, 1))
}
