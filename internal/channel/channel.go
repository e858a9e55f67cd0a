// Package channel carries decoder envelopes and registry changes between
// goroutines. Unbounded backs the decoder streams, whose producers must
// never block; Buffered backs the per-client websocket queues, which drop
// a client instead of stalling the hub.
package channel

// Receiver is the consuming end. Receive closes after Close.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender is the producing end.
type Sender[T any] interface {
	Send(T)
}

// Channel is held by whoever owns the lifetime of the stream.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}
