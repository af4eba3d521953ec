// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/zentask/taskbridge/clickup"
	"github.com/zentask/taskbridge/config"
)

type exportFile struct {
	ExportedAt string         `json:"exported_at"`
	Source     string         `json:"source"`
	ListID     string         `json:"list_id"`
	ListName   string         `json:"list_name,omitempty"`
	Count      int            `json:"count"`
	Tasks      []clickup.Task `json:"tasks"`
}

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file (optional)")
	outputPath := flag.String("output", "tasks_export.json", "Output JSON file path")
	source := flag.String("source", "sprint", "List to export: sprint (newest sprint list) or backlog")
	showStats := flag.Bool("stats", false, "Show statistics for an existing export file")
	flag.Parse()

	if *showStats {
		if err := exportStats(*outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.ClickUp.APIToken == "" || cfg.ClickUp.ListID == "" {
		fmt.Fprintln(os.Stderr, "Error: CLICKUP_API_TOKEN and CLICKUP_LIST_ID must be set")
		os.Exit(1)
	}

	fmt.Printf("ClickUp Task Exporter\n")
	fmt.Printf("=====================\n")
	fmt.Printf("Source: %s\n", *source)
	fmt.Printf("Output: %s\n\n", *outputPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := clickup.New(cfg.ClickUp, nil)

	export, err := collectTasks(ctx, store, *source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	export.ExportedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("--- Export Statistics ---")
	if err := exportStats(*outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to generate stats: %v\n", err)
	}

	fmt.Println("\n✅ Export complete!")
}

func collectTasks(ctx context.Context, store *clickup.Client, source string) (*exportFile, error) {
	switch source {
	case "sprint":
		newest, err := store.GetNewestList(ctx)
		if err != nil {
			return nil, err
		}
		if newest == nil {
			return nil, fmt.Errorf("no sprint lists found, is CLICKUP_FOLDER_ID set?")
		}
		tasks, err := store.GetListTasks(ctx, newest.ID)
		if err != nil {
			return nil, err
		}
		return &exportFile{Source: source, ListID: newest.ID, ListName: newest.Name, Count: len(tasks), Tasks: tasks}, nil
	case "backlog":
		tasks, err := store.GetListTasks(ctx, store.BacklogListID())
		if err != nil {
			return nil, err
		}
		return &exportFile{Source: source, ListID: store.BacklogListID(), Count: len(tasks), Tasks: tasks}, nil
	default:
		return nil, fmt.Errorf("unknown source %q (use sprint or backlog)", source)
	}
}

func exportStats(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var export exportFile
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	fmt.Printf("Exported: %s\n", export.ExportedAt)
	fmt.Printf("Source:   %s", export.Source)
	if export.ListName != "" {
		fmt.Printf(" (%s)", export.ListName)
	}
	fmt.Printf("\nTasks:    %d\n", export.Count)

	byStatus := make(map[string]int)
	for _, task := range export.Tasks {
		status := task.Status.Status
		if status == "" {
			status = "no status"
		}
		byStatus[status]++
	}

	statuses := make([]string, 0, len(byStatus))
	for status := range byStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	for _, status := range statuses {
		fmt.Printf("  %-12s %d\n", status, byStatus[status])
	}
	return nil
}
