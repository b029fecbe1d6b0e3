// Package resize scales images into a target box using one of six fit
// modes, centring content and padding with a background colour where the
// mode calls for a fixed canvas.
package resize
