// Package engine renders source images into transformed, cached artifacts.
//
// The engine is addressed by a source-relative file name, a set of
// transform parameters and an option map. Options select the source and
// cache directories and tune cache layout:
//
//	source                      directory holding original uploads
//	cache                       directory for rendered artifacts
//	base_url                    public prefix the artifacts are served under
//	cache_path_prefix           sub-directory inside cache
//	group_cache_in_folders      nest artifacts under their source name (default true)
//	cache_with_file_extensions  append the output extension to cache files
//	max_image_size              upper bound on output width*height, 0 disables
//
// # Caching
//
// Each (source name, canonical parameters) pair maps to one cache file whose
// name is the xxHash64 of the pair. A cached file is returned as-is; a miss
// decodes the source, applies the manipulations and writes the result via a
// temporary file and rename, so readers never observe a partial artifact.
// Concurrent renders of the same key share a single computation.
//
// # Manipulation Order
//
// Manipulations run in a fixed order: orientation, crop, size, brightness,
// contrast, gamma, sharpen, filter, flip, blur, pixelate, background, border.
// Encoding happens last.
package engine
