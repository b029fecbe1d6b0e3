// Package convert re-encodes images into a target format, writing
// <destination>/<base><target extension> for each source file.
package convert
