package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/smy-101/vibe-sync/internal/config"
	"github.com/smy-101/vibe-sync/pkg/cmd"
)

func main() {
	initViper()
	cmd.Execute()
}

func initViper() {
	if err := config.Load(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}
