// Package urls holds the project URLs printed by the CLI and the panel, so
// a repository move is a one-line change.
package urls
