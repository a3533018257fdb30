package capture

// FrameListener receives captured frames on the delivery goroutine. Every frame
// holds exactly the configured frame length of samples. The slice is shared by
// all listeners of that frame and must be treated as read-only.
//
// Listeners are removed by identity, so implement it on a pointer type or use
// FrameFunc. A listener whose dynamic type is not comparable, such as a func
// type, can only be dropped by ClearFrameListeners.
type FrameListener interface {
	OnFrame(frame []int16)
}

// ErrorListener receives device-level capture failures on the delivery goroutine.
// Identity rules match FrameListener.
type ErrorListener interface {
	OnError(err *CaptureError)
}

type frameFunc struct {
	fn func(frame []int16)
}

func (f *frameFunc) OnFrame(frame []int16) { f.fn(frame) }

// FrameFunc adapts fn to a FrameListener. Each call returns a distinct listener,
// so the result is what must be passed to RemoveFrameListener.
func FrameFunc(fn func(frame []int16)) FrameListener {
	return &frameFunc{fn: fn}
}

type errorFunc struct {
	fn func(err *CaptureError)
}

func (f *errorFunc) OnError(err *CaptureError) { f.fn(err) }

// ErrorFunc adapts fn to an ErrorListener with its own identity
func ErrorFunc(fn func(err *CaptureError)) ErrorListener {
	return &errorFunc{fn: fn}
}
