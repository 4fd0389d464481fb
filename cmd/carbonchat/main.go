// Package main 是 carbonchat 命令行工具的入口点。
package main

import (
	"fmt"
	"os"

	"carbon-chat-go/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
