// Package viz draws the fluid in the terminal.
//
//   - [Model]: full-screen Bubble Tea view; mouse drag pours particles
//   - [App]: preset picker in front of [Model]
//   - [Watcher]: plain ANSI redraw for headless runs
//   - [Canvas]: braille dot canvas, 2x4 dots per cell
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset and refill
//	C     - Clear particles
//	P     - Toggle preset emitters
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	S     - Save SVG snapshot
//	?     - Show help overlay
//
// Resizing the terminal resizes the simulation, which discards every
// particle and refills the tank.
package viz
