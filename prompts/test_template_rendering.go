// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

//go:build ignore

package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/zentask/taskbridge/llm"
	"github.com/zentask/taskbridge/prompts"
)

func main() {
	// Load the prompts system
	p, err := llm.NewPrompts(prompts.PromptsFolder)
	if err != nil {
		log.Fatalf("Failed to load prompts: %v", err)
	}

	ctx := llm.NewContext(llm.WithParameters(map[string]any{
		"Message":     "dodaj taska",
		"TaskContent": "Fix login bug with special characters",
		"Context":     "Ala: login fails when the password has a plus sign",
	}))

	render := func(promptName string) string {
		result, err := p.Format(promptName, ctx)
		if err != nil {
			log.Fatalf("Failed to format prompt '%s': %v", promptName, err)
		}

		fmt.Printf("=== %s ===\n", promptName)
		fmt.Println(result)
		fmt.Printf("--- %d characters ---\n\n", len(result))
		return result
	}

	intentUser := render(prompts.PromptIntentClassifyUser)
	titleUser := render(prompts.PromptTaskTitleUser)
	render(prompts.PromptIntentClassifySystem)

	// Check that parameter substitution actually happened
	if strings.Contains(intentUser, "dodaj taska") {
		fmt.Println("✅ Message parameter IS substituted")
	} else {
		fmt.Println("❌ Message parameter NOT substituted")
	}

	if strings.Contains(titleUser, "Fix login bug with special characters") {
		fmt.Println("✅ TaskContent parameter IS substituted")
	} else {
		fmt.Println("❌ TaskContent parameter NOT substituted")
	}

	if strings.Contains(titleUser, "Relevant context from recent discussion") {
		fmt.Println("✅ Optional context section IS rendered when Context is set")
	} else {
		fmt.Println("❌ Optional context section NOT rendered")
	}
}
