// Package bridge is the public face of wirebridge.
//
// A Bridge owns the handle allocator, the session and connection
// registries, and the shared credit pool, and exposes the consumer-facing
// operations: CreateSession, ClearSession, DropSession, Request, Connect,
// Send and Close. All state lives on the Bridge instance; construct one at
// process start and pass it to whatever hosts the consumer.
//
//	b := bridge.New(bridge.Config{Logger: logger})
//	handle, err := b.Connect(ctx, bridge.ConnectOptions{
//	    URL: "wss://stream.example.com/feed",
//	    Callbacks: stream.Callbacks{
//	        OnMessage: func(kind stream.EventKind, data []byte) { ... },
//	        OnClose:   func() { ... },
//	    },
//	})
package bridge
