// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// logLine matches the JSON entries the file hook in logger/ writes.
type logLine struct {
	Time   string
	Level  string
	Msg    string
	Fields map[string]any
}

var (
	filename   string
	errorsOnly bool
	tailCount  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "logviewer",
		Short: "Display TaskBridge JSON log files",
		Long: `logviewer pretty-prints the JSON log file the bot writes when started with
--logfile, with optional filtering down to warnings and errors.`,
		Example: `  logviewer -f taskbridge.log               # View the whole file
  logviewer -f taskbridge.log --errors-only # Show only warnings and errors
  logviewer -f taskbridge.log -n 50         # Show the last 50 entries`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return view()
		},
	}

	rootCmd.Flags().StringVarP(&filename, "file", "f", "taskbridge.log", "Path to the JSON log file")
	rootCmd.Flags().BoolVar(&errorsOnly, "errors-only", false, "Show only warnings and errors")
	rootCmd.Flags().IntVarP(&tailCount, "tail", "n", 0, "Show only the last N entries")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func view() error {
	lines, skipped, err := loadLines(filename)
	if err != nil {
		return err
	}

	if errorsOnly {
		filtered := lines[:0]
		for _, line := range lines {
			if line.Level == "warning" || line.Level == "error" || line.Level == "fatal" {
				filtered = append(filtered, line)
			}
		}
		lines = filtered
	}
	if tailCount > 0 && len(lines) > tailCount {
		lines = lines[len(lines)-tailCount:]
	}

	for _, line := range lines {
		fmt.Printf("%-25s %-8s %s", line.Time, strings.ToUpper(line.Level), line.Msg)
		if len(line.Fields) > 0 {
			fmt.Printf("  %s", renderFields(line.Fields))
		}
		fmt.Println()
	}

	printSummary(lines, skipped)
	return nil
}

func loadLines(path string) ([]logLine, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var lines []logLine
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var entry map[string]any
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			skipped++
			continue
		}

		line := logLine{Fields: make(map[string]any)}
		for key, value := range entry {
			switch key {
			case "time":
				line.Time, _ = value.(string)
			case "level":
				line.Level, _ = value.(string)
			case "msg":
				line.Msg, _ = value.(string)
			default:
				line.Fields[key] = value
			}
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}

	return lines, skipped, nil
}

func renderFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, fields[key]))
	}
	return strings.Join(parts, " ")
}

func printSummary(lines []logLine, skipped int) {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("%d entries", len(lines))

	byLevel := make(map[string]int)
	for _, line := range lines {
		byLevel[line.Level]++
	}
	levels := make([]string, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		fmt.Printf("  %s=%d", level, byLevel[level])
	}
	if skipped > 0 {
		fmt.Printf("  (%d unparseable lines skipped)", skipped)
	}
	fmt.Println()
}
