package main

import (
	"time"

	"github.com/impactwatch/extension/internal/dispatcher"
)

// registerHandlers registers every host command with the dispatcher
func registerHandlers(d *dispatcher.Dispatcher) {
	d.Register(":VERSION:", func(e dispatcher.Event) (any, error) {
		return []string{CurrentExtensionVersion, BuildDate}, nil
	})

	d.Register(":GETDIR:MODULE:", func(e dispatcher.Event) (any, error) {
		return ModuleFolder, nil
	})

	d.Register(":GETDIR:LOG:", func(e dispatcher.Event) (any, error) {
		return LogFilePath, nil
	})

	// Host script messages; dropped rather than stalling the frame when
	// the queue is full.
	d.Register(":LOG:", func(e dispatcher.Event) (any, error) {
		if len(e.Args) > 0 {
			Logger.Info(e.Args[0], "source", "host")
		}
		return nil, nil
	}, dispatcher.Buffered(256), dispatcher.Recovered())

	d.Register(":SESSION:START:", func(e dispatcher.Event) (any, error) {
		s := parserService.ParseSession(e.Args, time.Now())
		startSession(s)
		return s.ID.String(), nil
	}, dispatcher.Logged(), dispatcher.Recovered())

	d.Register(":SESSION:END:", func(e dispatcher.Event) (any, error) {
		Logger.Info("Received :SESSION:END: command, ending tracking session")
		if err := endSession(); err != nil {
			return nil, err
		}
		return "ok", nil
	}, dispatcher.Logged(), dispatcher.Recovered())

	d.Register(":FRAME:", func(e dispatcher.Event) (any, error) {
		snap, err := parserService.ParseSnapshot(e.Args)
		if err != nil {
			return nil, err
		}
		if err := impactTracker.Update(snap); err != nil {
			return nil, err
		}
		desc, _ := Board.CurrentDescription()
		return desc, nil
	}, dispatcher.Recovered())

	d.Register(":IMPACT:SECONDS:", func(e dispatcher.Event) (any, error) {
		return Board.CurrentSecondsUntilImpact(), nil
	})

	d.Register(":IMPACT:SPEED:", func(e dispatcher.Event) (any, error) {
		return Board.CurrentImpactSpeed(), nil
	})

	d.Register(":IMPACT:DESC:", func(e dispatcher.Event) (any, error) {
		desc, _ := Board.CurrentDescription()
		return desc, nil
	})

	d.Register(":IMPACT:STATE:", func(e dispatcher.Event) (any, error) {
		return impactTracker.State().String(), nil
	})
}
