package ecs_test

import (
	"fmt"
	"sync"

	"github.com/plus3/voxelvolution/ecs"
)

// ExampleComponentUpdateSystem shows producers scheduling future state and a single consumer
// committing it frame by frame.
func ExampleComponentUpdateSystem() {
	registry := ecs.NewRegistry()
	updates := ecs.UpdatesOf[Position](registry)
	store := ecs.StoreOf[Position](registry)

	var wg sync.WaitGroup
	for i := range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			updates.SubmitUpdate(ecs.EntityId(i+1), Position{X: float32(i)}, ecs.FrameId(i+1))
		}()
	}
	wg.Wait()

	for frame := ecs.FrameId(1); frame <= 3; frame++ {
		updates.UpdateTo(frame)
		fmt.Printf("frame %d: %d entities\n", frame, store.Len())
	}

	// Output:
	// frame 1: 1 entities
	// frame 2: 2 entities
	// frame 3: 3 entities
}

// ExampleComponentUpdateSystem_nextFrame shows the NextFrame sentinel joining the earliest
// uncommitted frame.
func ExampleComponentUpdateSystem_nextFrame() {
	registry := ecs.NewRegistry()
	updates := ecs.UpdatesOf[Name](registry)

	updates.SubmitUpdate(7, Name{Value: "X"}, ecs.NextFrame)
	updates.SubmitUpdate(7, Name{Value: "Y"}, ecs.NextFrame)
	fmt.Println(updates.BaseFrame())

	updates.UpdateTo(1)
	fmt.Println(ecs.StoreOf[Name](registry).Get(7).Value)

	// Output:
	// 0
	// Y
}

type healthWatcher struct{}

func (healthWatcher) On(entity ecs.EntityId, change ecs.ComponentChanged[Health]) {
	if change.New == nil {
		fmt.Printf("entity %d removed at frame %d\n", entity, change.Frame)
		return
	}
	fmt.Printf("entity %d health %d at frame %d\n", entity, change.New.Current, change.Frame)
}

// ExampleComponentChanged shows subscribing to the commits of one component type.
func ExampleComponentChanged() {
	registry := ecs.NewRegistry()
	ecs.EventsOf[ecs.ComponentChanged[Health]](registry).SubscribeAll(healthWatcher{})

	entity := registry.Entity(3)
	ecs.Submit(entity, Health{Current: 10, Max: 10}, 1)
	ecs.Submit(entity, Health{Current: 4, Max: 10}, 2)
	ecs.SubmitRemoval[Health](entity, 3)
	registry.UpdateAll(3)

	// Output:
	// entity 3 health 10 at frame 1
	// entity 3 health 4 at frame 2
	// entity 3 removed at frame 3
}

type PrintSystem struct {
	Entities ecs.Query[struct {
		*Name
		Health *Health `ecs:"optional"`
	}]
}

func (s *PrintSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Values() {
		if item.Health == nil {
			fmt.Printf("frame %d: %s\n", frame.Frame, item.Name.Value)
			continue
		}
		fmt.Printf("frame %d: %s (%d hp)\n", frame.Frame, item.Name.Value, item.Health.Current)
	}
}

// ExampleScheduler shows the frame loop: systems run against the last committed state, then the
// frame is committed.
func ExampleScheduler() {
	registry := ecs.NewRegistry()
	scheduler := ecs.NewScheduler(registry)
	scheduler.Register(&PrintSystem{})

	hero := registry.Entity(1)
	ecs.Submit(hero, Name{Value: "hero"}, ecs.NextFrame)
	scheduler.Once(0.016)

	ecs.Submit(hero, Health{Current: 12, Max: 12}, scheduler.Frame())
	scheduler.Once(0.016)
	scheduler.Once(0.016)

	// Output:
	// frame 2: hero
	// frame 3: hero (12 hp)
}
