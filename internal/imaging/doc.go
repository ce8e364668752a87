// Package imaging provides the image operations shared by the icon cache and
// the server: decoding, normalization and description.
//
// Decoding accepts PNG, JPEG, GIF, WebP and BMP. Normalize re-encodes an
// icon as PNG after honoring EXIF orientation and fitting it into a square
// of the requested edge; icons that already fit are not upscaled.
//
// # Color Representation
//
// Colors are returned in multiple formats for flexibility:
//   - Hex: 6-character format "#RRGGBB" (alpha excluded)
//   - RGB: 8-bit components (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// Pixels with less than half opacity are ignored by AverageColor and
// DominantColors, so icon backgrounds do not skew the results.
//
// # Error Handling
//
// Functions return descriptive errors wrapping the underlying cause:
//   - Decode errors for unsupported or corrupted data
//   - File errors for missing or unreadable paths
package imaging
