// Package tick provides an ordered registry of deferred actions
// and a ticker that replays every registered action on a fixed period.
// Registry methods are thread-safe. A Ticker is driven by a single
// goroutine calling Run, while Interrupt may be called from anywhere.
package tick
