package ecs

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	Frame           FrameId
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
	Commit          SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func newSystemStats(name string) *systemStatsInternal {
	return &systemStatsInternal{
		name:        name,
		minDuration: time.Duration(1<<63 - 1),
	}
}

func (s *systemStatsInternal) record(duration time.Duration) {
	s.executionCount++
	s.lastDuration = duration
	s.totalDuration += duration

	if duration < s.minDuration {
		s.minDuration = duration
	}
	if duration > s.maxDuration {
		s.maxDuration = duration
	}
}

func (s *systemStatsInternal) snapshot() SystemStats {
	avgDuration := time.Duration(0)
	minDuration := s.minDuration
	if s.executionCount > 0 {
		avgDuration = s.totalDuration / time.Duration(s.executionCount)
	} else {
		minDuration = 0
	}
	return SystemStats{
		Name:           s.name,
		ExecutionCount: s.executionCount,
		MinDuration:    minDuration,
		MaxDuration:    s.maxDuration,
		AvgDuration:    avgDuration,
		LastDuration:   s.lastDuration,
		TotalDuration:  s.totalDuration,
	}
}

// FrameReport describes one committed frame.
type FrameReport struct {
	Frame     FrameId
	DeltaTime float64
	Systems   time.Duration
	Commit    time.Duration
	Updates   []UpdateSystemStats
}

// FrameObserver is notified after every frame the scheduler commits.
type FrameObserver interface {
	FrameCommitted(report FrameReport)
}

type queryExecutor interface {
	Execute()
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithObserver adds an observer notified after every frame.
func WithObserver(observer FrameObserver) SchedulerOption {
	return func(s *Scheduler) {
		s.observers = append(s.observers, observer)
	}
}

// WithSlowFrameThreshold logs a warning for frames that take longer than threshold.
// A zero threshold disables the warning.
func WithSlowFrameThreshold(threshold time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.slowFrame = threshold
	}
}

// Scheduler drives frames: it executes the registered systems in order, then commits every
// component type up to the current frame, then advances the frame.
type Scheduler struct {
	registry    *Registry
	systems     []System
	queries     [][]queryExecutor
	systemStats []*systemStatsInternal
	commitStats *systemStatsInternal

	frame     FrameId
	observers []FrameObserver
	slowFrame time.Duration
	logger    zerolog.Logger
}

// NewScheduler creates a new scheduler for the given registry. The first frame is 1.
func NewScheduler(registry *Registry, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		registry:    registry,
		systems:     make([]System, 0),
		commitStats: newSystemStats("commit"),
		frame:       1,
		logger:      registry.Logger().With().Str("module", "scheduler").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a system to the scheduler and initializes its Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	queries := s.initializeFields(system)
	s.systems = append(s.systems, system)
	s.queries = append(s.queries, queries)

	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	s.systemStats = append(s.systemStats, newSystemStats(systemType.Name()))
}

func (s *Scheduler) initializeFields(system System) []queryExecutor {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	systemType := systemValue.Type()
	var queries []queryExecutor

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()

		if strings.HasPrefix(typeName, "Query[") {
			initMethod := field.Addr().MethodByName("Init")
			if !initMethod.IsValid() {
				panic("Init method not found on Query field: " + fieldType.Name)
			}

			initMethod.Call([]reflect.Value{
				reflect.ValueOf(s.registry),
			})
			if q, ok := field.Addr().Interface().(queryExecutor); ok {
				queries = append(queries, q)
			}
			continue
		}

		if strings.HasPrefix(typeName, "Singleton[") {
			initMethod := field.Addr().MethodByName("Init")
			if !initMethod.IsValid() {
				panic("Init method not found on Singleton field: " + fieldType.Name)
			}

			initMethod.Call([]reflect.Value{
				reflect.ValueOf(s.registry),
			})
			continue
		}
	}

	return queries
}

// Frame returns the frame the next call to Once will execute and commit.
func (s *Scheduler) Frame() FrameId {
	return s.frame
}

// Once executes all registered systems once with the given delta time, commits the frame and
// advances to the next one.
func (s *Scheduler) Once(dt float64) {
	frameStart := time.Now()
	frame := newUpdateFrame(s.frame, dt, s.registry)

	for i, system := range s.systems {
		start := time.Now()
		for _, q := range s.queries[i] {
			q.Execute()
		}
		system.Execute(frame)
		s.systemStats[i].record(time.Since(start))
	}
	systemsDuration := time.Since(frameStart)

	commitStart := time.Now()
	s.registry.UpdateAll(s.frame)
	commitDuration := time.Since(commitStart)
	s.commitStats.record(commitDuration)

	if s.slowFrame > 0 && systemsDuration+commitDuration > s.slowFrame {
		s.logger.Warn().
			Int64("frame", int64(s.frame)).
			Dur("systems", systemsDuration).
			Dur("commit", commitDuration).
			Msg("slow frame")
	}

	if len(s.observers) > 0 {
		report := FrameReport{
			Frame:     s.frame,
			DeltaTime: dt,
			Systems:   systemsDuration,
			Commit:    commitDuration,
			Updates:   s.registry.UpdateStats(),
		}
		for _, o := range s.observers {
			o.FrameCommitted(report)
		}
	}

	s.frame++
}

// Run executes frames repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		Frame:       s.frame,
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systemStats)),
		Commit:      s.commitStats.snapshot(),
	}

	var totalExecs int64
	for i, internal := range s.systemStats {
		stats.Systems[i] = internal.snapshot()
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
