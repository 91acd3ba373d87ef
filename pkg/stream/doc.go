// Package stream delivers a socket connection's inbound traffic to a
// single-threaded consumer as serialized callbacks.
//
// Each connection gets a pump/dispatcher pair. The pump is the sole reader
// of the wire: it classifies frames into events and pushes them into a
// bounded queue, blocking when the queue is full so a fast peer cannot
// outrun a slow consumer. The dispatcher is the queue's sole consumer: it
// delivers events strictly in arrival order, one callback invocation at a
// time, under a credit pool shared by all connections feeding the same
// consumer. The terminal Close event is delivered exactly once per
// connection no matter how the stream ended, and after it the dispatcher
// deregisters the connection and tears the transport down.
package stream
