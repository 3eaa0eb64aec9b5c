// Command maskreplay replays a scripted sequence of pointer, wheel and key
// events against a mask editor and writes the resulting mask and composite
// images.
//
// Usage:
//
//	maskreplay --image photo.png --script strokes.yaml --mask mask.png
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
