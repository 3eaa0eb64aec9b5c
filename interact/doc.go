// Package interact turns host input events into brush strokes, pans, zooms
// and history shortcuts.
//
// A Controller consumes gpucontext pointer, scroll, key and focus events and
// drives a Host, which owns the mask surface and the viewport. The
// controller keeps only gesture state: the current Mode, the held keys and
// the brush radius.
//
// Modes are mutually exclusive:
//
//	Idle    -> Drawing   primary or secondary button down
//	Idle    -> Panning   middle button down, or left button with space held
//	Drawing -> Idle      pointer up, leave, cancel or focus loss
//	Panning -> Idle      pointer up, leave, cancel or focus loss
//
// Space only arms panning while the zoom scale is above 1.
package interact
