// Package language provides language code normalization and display names
// built on golang.org/x/text, plus the target codes written into output
// stream metadata.
package language
