package debugui

import (
	"reflect"

	"github.com/plus3/voxelvolution/ecs"
)

type EntityBrowser struct {
	cache              *EntityBrowserCache
	selectedEntityId   ecs.EntityId
	filterText         string
	maxEntitiesPerPage int
	currentPage        int
}

type ComponentInspector struct {
	selectedEntityId ecs.EntityId
	pendingEdits     int
}

type UpdateSystemViewer struct {
	selected      string
	sortColumn    int
	sortAscending bool
}

type PerformanceStats struct {
	historyFrames int
	frameHistory  []float32
	commitHistory []float32
	frameIndex    int
}

type QueryDebugger struct {
	selectedComponentTypes map[reflect.Type]bool
}
