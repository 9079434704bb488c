package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/impactwatch/extension/internal/parser"
	"github.com/impactwatch/extension/internal/session"
	"github.com/impactwatch/extension/internal/tracker"
)

const defaultFrameStep = 20 * time.Millisecond

// stepClock advances by a fixed step every frame.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	return c.now
}

func (c *stepClock) advance() {
	c.now = c.now.Add(c.step)
}

// replayFile feeds a recorded snapshot file through a fresh tracker wired
// to the configured telemetry sinks and prints what was published.
func replayFile(path string, step time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	board := session.NewContext()
	clock := &stepClock{now: time.Now(), step: step}

	tr, err := tracker.New(tracker.Dependencies{
		Settings:  trackerSettings(),
		Board:     board,
		Logger:    Logger,
		Clock:     clock,
		Recorders: recorders(),
	})
	if err != nil {
		return err
	}
	defer tr.Close()

	s := parserService.ParseSession([]string{"replay " + path}, clock.Now())
	tr.StartSession(s)
	if storageBackend != nil {
		if err := storageBackend.StartSession(s); err != nil {
			Logger.Warn("Failed to start telemetry session", "error", err)
		}
	}

	frames, err := replay(f, os.Stdout, parserService, tr, clock)
	Logger.Info("Replay finished", "frames", frames, "session", s.ID)
	return err
}

// replay runs one snapshot per non-empty line and writes the published
// description (or "-" when nothing is shown) for each frame.
func replay(r io.Reader, w io.Writer, p *parser.Parser, tr *tracker.Tracker, clock *stepClock) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	frames := 0
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		snap, err := p.ParseSnapshotJSON([]byte(text))
		if err != nil {
			return frames, fmt.Errorf("line %d: %w", line, err)
		}
		if err := tr.Update(snap); err != nil {
			fmt.Fprintf(w, "%d\terror: %v\n", frames, err)
		} else if desc, ok := tr.Board().CurrentDescription(); ok {
			fmt.Fprintf(w, "%d\t%s\n", frames, desc)
		} else {
			fmt.Fprintf(w, "%d\t-\n", frames)
		}

		frames++
		clock.advance()
	}
	return frames, scanner.Err()
}
