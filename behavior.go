package darkmatter

import "context"

// GameBehavior is the hook set a node's behaviors implement. The runtime
// calls these; it never implements them. Embed BaseBehavior to get no-op
// defaults and override only the hooks you need.
//
// Per executed tick the scheduler runs BeginLoop for every active node,
// then Loop for every active node, then EndLoop; phases are never
// interleaved per node. Draw is called during the render pass in paint
// order. A panic inside any single hook is recovered and logged without
// aborting the tick for other nodes.
type GameBehavior interface {
	// Preload is called once during scene load, before Start. Asset loads
	// and other slow setup belong here. Returning an error fails the load.
	Preload(ctx context.Context) error

	// Start is called once after every behavior in the scene has preloaded.
	Start()

	// BeginLoop runs at the beginning of each tick, before game logic.
	BeginLoop(dt float64)

	// Loop runs the node's game logic for the tick.
	Loop(dt float64)

	// EndLoop runs after all nodes' Loop phases have completed.
	EndLoop(dt float64)

	// Draw renders the node onto the surface. The surface transform is the
	// current view matrix, so drawing in world coordinates lands correctly.
	Draw(surface Surface)

	// OnDestroy is called when the node is destroyed or the scene unloads.
	OnDestroy()
}

// BaseBehavior provides no-op implementations of every GameBehavior hook.
type BaseBehavior struct{}

func (BaseBehavior) Preload(context.Context) error { return nil }
func (BaseBehavior) Start()                        {}
func (BaseBehavior) BeginLoop(float64)             {}
func (BaseBehavior) Loop(float64)                  {}
func (BaseBehavior) EndLoop(float64)               {}
func (BaseBehavior) Draw(Surface)                  {}
func (BaseBehavior) OnDestroy()                    {}

// FuncBehavior adapts plain functions to GameBehavior. Nil fields are no-ops.
// Convenient for tests and small scripted objects.
type FuncBehavior struct {
	BaseBehavior
	OnPreload   func(ctx context.Context) error
	OnStart     func()
	OnBeginLoop func(dt float64)
	OnLoop      func(dt float64)
	OnEndLoop   func(dt float64)
	OnDraw      func(surface Surface)
	OnDestroyed func()
}

func (f *FuncBehavior) Preload(ctx context.Context) error {
	if f.OnPreload != nil {
		return f.OnPreload(ctx)
	}
	return nil
}

func (f *FuncBehavior) Start() {
	if f.OnStart != nil {
		f.OnStart()
	}
}

func (f *FuncBehavior) BeginLoop(dt float64) {
	if f.OnBeginLoop != nil {
		f.OnBeginLoop(dt)
	}
}

func (f *FuncBehavior) Loop(dt float64) {
	if f.OnLoop != nil {
		f.OnLoop(dt)
	}
}

func (f *FuncBehavior) EndLoop(dt float64) {
	if f.OnEndLoop != nil {
		f.OnEndLoop(dt)
	}
}

func (f *FuncBehavior) Draw(surface Surface) {
	if f.OnDraw != nil {
		f.OnDraw(surface)
	}
}

func (f *FuncBehavior) OnDestroy() {
	if f.OnDestroyed != nil {
		f.OnDestroyed()
	}
}
