// Command decide evaluates an execution strategy decision from a device
// snapshot supplied as JSON on stdin or as a file argument.
//
// Usage:
//
//	decide [snapshot.json]
//	echo '{"network_available":true,"battery_percent":80}' | decide
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arvik-ai/runtime-bridge/internal/strategy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "decide:", err)
		os.Exit(1)
	}
}

func run() error {
	var raw []byte
	var err error
	if len(os.Args) > 1 {
		raw, err = os.ReadFile(os.Args[1])
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	var snap strategy.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	decision := strategy.Decide(snap)
	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
