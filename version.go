package simflow

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/aretw0/simflow.Version=...".
var Version = "0.1.0-dev"
