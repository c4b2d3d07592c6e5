// Package file persists sessions as JSON documents on the local filesystem
// and loads form definitions from YAML or JSON files.
package file
