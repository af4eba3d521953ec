// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package llm

import (
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

const PromptExtension = "tmpl"

// Prompts holds the parsed prompt template set. Templates are addressed by
// filename without the extension.
type Prompts struct {
	templates *template.Template
}

// NewPrompts parses every template in the given filesystem.
func NewPrompts(promptsFolder fs.FS) (*Prompts, error) {
	templates, err := template.ParseFS(promptsFolder, "*."+PromptExtension)
	if err != nil {
		return nil, fmt.Errorf("unable to parse prompt templates: %w", err)
	}

	return &Prompts{
		templates: templates,
	}, nil
}

// Format renders the named template against the given context.
func (p *Prompts) Format(templateName string, context *Context) (string, error) {
	tmpl := p.templates.Lookup(templateName + "." + PromptExtension)
	if tmpl == nil {
		return "", fmt.Errorf("prompt template not found: %s", templateName)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, context); err != nil {
		return "", fmt.Errorf("unable to render prompt template %s: %w", templateName, err)
	}

	return strings.TrimSpace(out.String()), nil
}
