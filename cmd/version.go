package cmd

import (
	"fmt"
	"runtime"
)

// Version is injected at build time:
//
//	go build -ldflags "-X github.com/koopa0/rag-platform/cmd.Version=v0.1.0"
var Version = "development"

// runVersion prints version information.
func runVersion() {
	fmt.Printf("rag-platform %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
