package main

import "github.com/kestrelworks/lobbyhub/internal/core"

func loadConfig() (*core.Config, error) {
	return core.LoadConfig(configFlag)
}
