// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package client_test

import (
	"context"
	"fmt"
	"time"

	"github.com/zentask/taskbridge/public/client"
)

// Example demonstrates basic usage of the admin API client
func Example() {
	c := client.New("http://localhost:8080", nil)

	status, err := c.Status(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Bot %s (version %s), %d guilds\n", status.Bot, status.Version, status.Guilds)
}

// ExampleClient_Health shows a liveness check suitable for a monitoring probe
func ExampleClient_Health() {
	c := client.New("http://localhost:8080", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Health(ctx); err != nil {
		fmt.Printf("Bot is down: %v\n", err)
		return
	}

	fmt.Println("Bot is up")
}

// ExampleClient_Tasks shows how to read the newest sprint list
func ExampleClient_Tasks() {
	c := client.New("http://localhost:8080", nil)

	tasks, err := c.Tasks(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("%d tasks in %s\n", tasks.Count, tasks.List)
	for _, task := range tasks.Tasks {
		fmt.Printf("- %s [%s]\n", task.Name, task.Status)
	}
}
