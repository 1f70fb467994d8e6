package main

import (
	"os"

	"github.com/ericselin/timecheck"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port int `yaml:"port"`
	// Database file name, "memory" for an in-memory store.
	DB string `yaml:"db"`
	// Process-wide timestamp check settings, applied over the environment.
	Timecheck timecheck.Overrides `yaml:"timecheck"`
	Rules     timecheck.Rules     `yaml:"rules"`
}

func getConfig(filename string) (Config, error) {
	var config Config
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}
