// Package main 提供 megaengine 命令行入口
package main

import (
	"fmt"
	"os"

	"github.com/dep2p/go-megaengine/pkg/lib/log"
)

var logger = log.Logger("megaengine/cmd")

func main() {
	log.ConfigureFromEnv(os.Stderr)

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
