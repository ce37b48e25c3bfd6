package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// runScript executes a script file line by line. Blank lines and lines
// starting with # are skipped. It returns true when the script asked
// the session to end.
func (r *repl) runScript(path string) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		return false, fmt.Errorf("reading script: %w", err)
	}

	for _, raw := range strings.Split(string(data), "\n") {
		input := strings.TrimSpace(raw)
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}

		fmt.Printf("> %s\n", input)

		if r.execute(input) {
			return true, nil
		}
	}

	return false, nil
}

func (r *repl) cmdRecord(args []string) {
	if len(args) < 1 {
		status := "off"
		if r.recording {
			status = "on"
		}

		fmt.Printf("Recording: %s (%d lines captured)\n", status, len(r.transcript))

		return
	}

	switch strings.ToLower(args[0]) {
	case "on":
		r.recording = true
		r.transcript = r.transcript[:0]

		fmt.Println("OK: recording (transcript cleared)")

	case "off":
		r.recording = false

		fmt.Printf("OK: stopped recording (%d lines)\n", len(r.transcript))

	default:
		fmt.Println("Usage: record on|off")
	}
}

func (r *repl) cmdSave(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: save <file>")

		return
	}

	if len(r.transcript) == 0 {
		fmt.Println("(nothing recorded; use 'record on' first)")

		return
	}

	content := strings.Join(r.transcript, "\n") + "\n"

	// Atomic write so an interrupted save never leaves a torn script.
	if err := atomic.WriteFile(args[0], strings.NewReader(content)); err != nil {
		fmt.Printf("Error: %v\n", err)

		return
	}

	fmt.Printf("OK: wrote %d lines to %s\n", len(r.transcript), args[0])
}

// cmdReplay runs a script from inside the session. It returns true when
// the script asked the session to end.
func (r *repl) cmdReplay(args []string) bool {
	if len(args) < 1 {
		fmt.Println("Usage: replay <file>")

		return false
	}

	if r.replaying {
		fmt.Println("Error: nested replay is not supported")

		return false
	}

	r.replaying = true
	defer func() { r.replaying = false }()

	quit, err := r.runScript(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)

		return false
	}

	return quit
}
