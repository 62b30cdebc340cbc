// Package app assembles the acquisition and rotation pipeline from
// settings. Both user interfaces (CLI and TUI) construct a Runner and
// drive the same operations through it.
package app
