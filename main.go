// Package main is the entry point for the ytplan application.
package main

import (
	"github.com/samber/lo"
	"github.com/ytplan-cli/ytplan/cmd"
	"github.com/ytplan-cli/ytplan/config"
	"github.com/ytplan-cli/ytplan/internal/cache"
	"github.com/ytplan-cli/ytplan/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Prune expired extraction caches in the background.
	cache.CollectGarbage()

	cmd.Execute()
}
