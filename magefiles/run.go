//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Opens a window and runs the boxes demo with config.toml.
func (Run) Engine() error {
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "config.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the boxes demo on the in-memory driver, without a window.
func (Run) Headless() error {
	mg.Deps(Build.Engine)
	fmt.Println("Run engine headless...")
	if _, err := executeCmd("bin/flatgl", withArgs("-config", "config.toml", "-headless"), withStream()); err != nil {
		return err
	}
	return nil
}
