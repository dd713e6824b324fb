// Package transform defines the image manipulation parameters carried by a
// preset and handed to the rendering engine.
//
// Parameters arrive as a loosely typed map (from YAML, JSON or Go literals)
// using short keys:
//
//	w, h      target width and height in pixels
//	fit       contain, max, fill, stretch, crop, crop-<position>
//	dpr       device pixel ratio multiplier for w and h
//	crop      manual crop rectangle "width,height,x,y"
//	or        orientation: auto, 0, 90, 180, 270
//	flip      h, v, both
//	bri, con  brightness and contrast, -100..100
//	gam       gamma, 0.1..9.99
//	sharp     sharpen amount, 0..100
//	blur      blur amount, 0..100
//	pixel     pixelate block size, 0..1000
//	filt      greyscale, sepia
//	bg        background colour
//	border    "width,colour[,method]"
//	q         output quality, 0..100
//	fm        output format: jpg, pjpg, png, gif, webp, tiff, bmp
//
// Parse validates every value once so that a bad preset fails at startup
// rather than on the first request that uses it.
package transform
