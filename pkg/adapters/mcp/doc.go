// Package mcp exposes simflow sessions to agents as Model Context Protocol
// tools, with the form definition published as the simflow://form resource.
package mcp
