/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/flatgl/engine"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/testbed"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML application config")
	headless := flag.Bool("headless", false, "render with the in-memory driver instead of opening a window")
	flag.Parse()

	config := engine.DefaultApplicationConfig()
	if _, err := os.Stat(*configPath); err == nil {
		if config, err = engine.LoadApplicationConfig(*configPath); err != nil {
			core.LogFatal("invalid config: %s", err)
		}
	} else {
		core.LogWarn("config %s not found, using defaults", *configPath)
	}

	tb, err := testbed.NewTestGame(config)
	if err != nil {
		core.LogFatal("%s", err)
	}

	e, err := engine.New(tb.Game, *headless)
	if err != nil {
		core.LogFatal("%s", err)
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("%s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// the loop owns the GL context, so a signal only asks it to stop
	go func() {
		<-sigCh
		e.Stop()
	}()

	// run engine
	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
