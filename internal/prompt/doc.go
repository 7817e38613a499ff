// Package prompt wraps interactive terminal prompts behind the Chooser
// interface so pipeline stages can be driven by scripted answers in tests.
package prompt
