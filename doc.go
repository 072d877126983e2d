// Package trellis is the interaction core of a node-graph editor built on
// [Ebitengine].
//
// A [Graph] holds nodes, the typed handles on them, and the edges that join
// handles. Every mutation records what changed in a [DirtyState], which the
// [Renderer] consumes to decide between a full and a partial resync.
//
// # Quick start
//
//	g := trellis.NewGraph()
//	a, _ := g.AddNode(trellis.NodeOptions{Position: trellis.Vec2{X: 100, Y: 100}, Size: trellis.Vec2{X: 200, Y: 100}})
//	out, _ := g.AddHandle(a.ID, trellis.HandleOptions{Kind: trellis.HandleOutput})
//	...
//	editor := trellis.NewEditor(g, trellis.EditorOptions{Width: 1280, Height: 720})
//	trellis.Run("graph", editor)
//
// # Picking
//
// Hover and drop targets are resolved exactly: a [PickResolver] renders every
// element into an offscreen id buffer, each filled with a color that encodes
// its [PickCodec] code, and reads back the single pixel under the cursor.
// The readback is asynchronous; a [PickRequest] is polled once per tick.
// Rectangle selection never reads the GPU and uses a [QuadTree] instead.
//
// # Tools
//
// An [Interactor] dispatches input to exactly one [Tool] at a time:
// [BaseTool] (hover and dispatch), [DragTool], [ConnectTool], [SelectTool]
// and [ViewportTool]. Every tool swap bumps a generation counter so that a
// pick issued by a replaced tool is discarded when it resolves.
//
// Editor events (hover, selection, tool and connection changes) can be
// forwarded to a [Donburi] world through the trellis/ecs package.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package trellis
