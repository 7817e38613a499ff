// Package fsnav lists volumes and directory entries for the interactive
// file browser, hiding operating system junk files.
package fsnav
