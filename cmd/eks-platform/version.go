package main

import "runtime/debug"

// version is stamped by release builds:
//
//	go build -ldflags "-X main.version=v0.4.0" ./cmd/eks-platform
var version = ""

// getVersion reports the eks-platform release. Unstamped binaries fall back
// to the module version recorded by go install, then to "dev".
func getVersion() string {
	if version != "" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	switch v := info.Main.Version; v {
	case "", "(devel)":
		return "dev"
	default:
		return v
	}
}
