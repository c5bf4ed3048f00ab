// Package version reports build and runtime information for rxkit binaries.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/rxkit/version.Version=1.0.0" ./cmd/rxdemo
package version
