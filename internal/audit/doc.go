// Package audit relays security-relevant authgate events to a sink without
// blocking the request path.
//
// The [Dispatcher] owns a bounded buffer and one delivery goroutine. When the
// buffer is full it either drops (counting the drop) or waits on the caller's
// context, depending on Config.DropIfFull. Which events to emit is decided by the
// engine, not here.
package audit
