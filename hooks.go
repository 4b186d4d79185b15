package phenograph

import "context"

// TraceEvent is passed to hook callbacks to describe tracing progress.
type TraceEvent struct {
	// Scope is the memo scope identifier of the trace call.
	Scope string
	// Query is the vertex whose color was requested.
	Query Vertex
	// Vertex is the vertex the event refers to. It equals Query for
	// query-level events.
	Vertex Vertex
	// Color is the resolved color, when one is available.
	Color ColorMatrix
	// Cached reports that the query was answered from the memo.
	Cached bool
	// Err is the error that ended the query, if any.
	Err error
}

// HookFunc is invoked for lifecycle notifications.
type HookFunc func(context.Context, TraceEvent)

// Hooks aggregates optional lifecycle callbacks. With more than one worker
// the callbacks may run concurrently.
type Hooks struct {
	OnQueryStart     HookFunc
	OnVertexResolved HookFunc
	OnQueryFinish    HookFunc
}

// Merge combines two hook sets, running the receiver first.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnQueryStart:     chainHooks(h.OnQueryStart, other.OnQueryStart),
		OnVertexResolved: chainHooks(h.OnVertexResolved, other.OnVertexResolved),
		OnQueryFinish:    chainHooks(h.OnQueryFinish, other.OnQueryFinish),
	}
}

func chainHooks(first, second HookFunc) HookFunc {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	default:
		return func(ctx context.Context, event TraceEvent) {
			first(ctx, event)
			second(ctx, event)
		}
	}
}

func invokeHook(ctx context.Context, hook HookFunc, event TraceEvent) {
	if hook != nil {
		hook(ctx, event)
	}
}
