// Package plugins holds the transformations a site build is assembled from.
// Every constructor returns a smith.Plugin; the order they run in is decided
// by the caller.
package plugins
