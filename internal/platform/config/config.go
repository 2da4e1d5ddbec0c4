// Package config
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. Pass one or more
// paths to load from specific files; with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or
// fallback if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by
// key, or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// TrackDefaults describes one preconfigured track entry in tracks.yaml.
type TrackDefaults struct {
	ID        string `yaml:"id"`
	Language  string `yaml:"language"`
	Timescale uint64 `yaml:"timescale"`
}

// TracksFile is the shape of an optional static track-configuration file.
type TracksFile struct {
	Tracks []TrackDefaults `yaml:"tracks"`
}

// LoadTracksFile reads and parses a tracks.yaml file. A missing file is not
// an error: callers get a zero-value TracksFile and should proceed with no
// preconfigured tracks.
func LoadTracksFile(path string) (TracksFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return TracksFile{}, nil
		}
		return TracksFile{}, err
	}

	var tf TracksFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return TracksFile{}, err
	}
	return tf, nil
}
