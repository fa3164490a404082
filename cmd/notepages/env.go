package main

import (
	"io"
	"os"
	"time"

	notepages "github.com/alnah/go-notepages"
	"github.com/alnah/go-notepages/internal/config"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration and extra processor options.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config // used when no --config is given

	// Options are appended to every processor the CLI builds, after the
	// options derived from config and flags.
	Options []notepages.Option
}

// DefaultEnv returns production environment with the built-in config.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Config: config.DefaultConfig(),
	}
}
