// Package imaging is the image engine behind the conversion service.
//
// It decodes image bytes, applies the pixel operations a conversion request
// can ask for, and encodes the result. Resampling, cropping, rotation and
// compositing are done with github.com/disintegration/imaging; blur,
// brightness/contrast and tinting with github.com/anthonynsimon/bild; color
// parsing and distances with github.com/lucasb-eyer/go-colorful.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner.
// Every image returned by this package has its bounds at (0,0).
//
// # Formats
//
// PNG, JPEG, GIF, BMP, TIFF and WEBP are detected from their signatures.
// TGA has no signature and is only read when named as a format hint. All
// formats except WEBP can be written.
//
// # Errors
//
// Decode failures are reported as *ReadError carrying one of DecodePhrases.
// Invalid option values are reported with the sentinel errors in errors.go,
// whose messages are stable. Exceeding a MemoryLimit yields ErrCacheExhausted.
//
// # Thread Safety
//
// Functions in this package hold no shared state and never modify their
// input images, so they may be called concurrently.
package imaging
