// Package ecs provides ECS adapters for darkmatter.
package ecs

import (
	"github.com/HorrellTech/darkmatter"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// FrameEventType is the Donburi event type for darkmatter frame events.
// Subscribe to this in your ECS systems to drive per-tick logic from the
// engine's scheduler.
var FrameEventType = events.NewEventType[darkmatter.FrameEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates a FrameSink backed by a Donburi world. Frame
// events are published to FrameEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) darkmatter.FrameSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitFrame(event darkmatter.FrameEvent) {
	FrameEventType.Publish(s.world, event)
}
