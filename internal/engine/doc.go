// Package engine runs a game.Engine on a single goroutine.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// game.Engine is not safe for concurrent use. Loop owns it and executes
// every mutation as a task taken from one FIFO queue:
//   - local input (terminal, CLI)
//   - remote input (netsync gateway)
//   - timer callbacks (AI delay, countdown, round reset, blind reveals)
//
// Timers are armed with time.AfterFunc, but the callback only enqueues a
// task; it never touches the game directly. Listeners registered on the
// game therefore also run on the loop goroutine.
//
// Task Processing Flow:
// 1. Callers Enqueue a task (or Do / Query and wait for it)
// 2. Loop.Run() dequeues tasks one at a time
// 3. Each task is stamped with a seq from the logical Clock
// 4. A panicking task is logged with its seq and name; the loop continues
//
// The loop is designed for correctness, not throughput.
package engine
