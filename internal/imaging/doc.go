// Package imaging implements the circle-mask operation and the image I/O it
// depends on.
//
// The pipeline for a single image is:
//
//  1. Decode the source (PNG, JPEG, GIF, BMP, TIFF or WebP) and normalise it
//     to non-premultiplied RGBA.
//  2. Build a single-channel mask of the same size, zero everywhere except a
//     filled ellipse inscribed in the full bounds, which is 255.
//  3. Fit the image to the mask with a centre-anchored crop. This is a no-op
//     when the sizes already match, which is the normal case.
//  4. Replace the image's alpha channel with the mask.
//  5. Encode to the format implied by the output file extension.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. The mask
// ellipse is inscribed in the rectangle (0,0)-(width,height), so for a
// non-square image it touches all four edges and is not a circle. Use
// CircleOptions.Square to crop to a centred square first.
//
// # Mask Edges
//
// Without anti-aliasing a pixel is opaque exactly when its centre lies inside
// or on the ellipse. With anti-aliasing, pixels crossed by the ellipse
// boundary receive partial coverage. Interior pixels are always 255 and
// exterior pixels always 0, unless the mask is feathered.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless
// and allocate their results, so they can run concurrently on the same
// source image.
//
// # Error Handling
//
// Every operation returns an error instead of printing or exiting. Sentinel
// errors (ErrMaskSize, ErrNoAlpha, ErrUnsupportedFormat, ErrEmptyImage) can
// be matched with errors.Is.
package imaging
