// Package fuzz holds the native Go fuzz targets for the kzg package. Seed
// corpora under testdata/fuzz are written by cmd/gencorpus.
package fuzz
