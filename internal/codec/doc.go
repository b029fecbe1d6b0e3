// Package codec reads and writes the image formats imgutil supports.
//
// JPEG, PNG, GIF, TIFF, and BMP go through disintegration/imaging. WebP is
// decoded by golang.org/x/image/webp and encoded by kolesa-team/go-webp.
// AVIF has no Go codec in our stack, so both directions shell out to ffmpeg
// through a temporary PNG. Every write lands in a temporary file next to the
// destination and is renamed into place once complete.
package codec
