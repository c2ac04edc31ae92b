package wca

// Version is the release of the wca module. It is overridden at build time
// with -ldflags "-X github.com/aretw0/wca.Version=...".
var Version = "0.1.0-dev"
