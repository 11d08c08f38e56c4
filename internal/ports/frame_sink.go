package ports

import "github.com/canlab/cansim/pkg/canframe"

// FrameSink receives every frame the pipeline observes, already encoded
// in wire format. The presentation layer subscribes here to broadcast
// raw frames; the core carries no transport detail.
//
// OnFrame is called from the pipeline's routing path and must not block;
// slow consumers should hand off to their own queue.
type FrameSink interface {
	OnFrame(raw []byte, frame canframe.Frame)
}

// FrameSinkFunc adapts a function to the FrameSink interface.
type FrameSinkFunc func(raw []byte, frame canframe.Frame)

// OnFrame calls f.
func (f FrameSinkFunc) OnFrame(raw []byte, frame canframe.Frame) {
	f(raw, frame)
}
