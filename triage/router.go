// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package triage

import (
	"context"
	"strings"
)

const (
	backlogLabel         = "📋 Backlog"
	backlogFallbackLabel = "📋 Backlog (fallback)"
)

// routeToList picks the target list for a new task. Saying "backlog"
// anywhere routes to the backlog; everything else goes to the newest sprint
// list. An empty list ID means the store's default backlog list.
//
// The newest sprint is the LAST list of the folder. ClickUp returns lists
// in creation order and exposes no dates, so position is the only signal.
func (t *Triager) routeToList(ctx context.Context, content string) (string, string) {
	if strings.Contains(strings.ToLower(content), "backlog") {
		t.log.Debug("Message asks for the backlog, routing there")
		return "", backlogLabel
	}

	newest, err := t.store.GetNewestList(ctx)
	if err != nil {
		t.log.Error("Failed to look up sprint lists, falling back to backlog", "error", err.Error())
		return "", backlogFallbackLabel
	}
	if newest == nil {
		t.log.Warn("No lists in the sprint folder, falling back to backlog")
		return "", backlogFallbackLabel
	}

	name := newest.Name
	if name == "" {
		name = "Current Sprint"
	}
	t.log.Debug("Routing to newest sprint list", "list_name", name, "list_id", newest.ID)
	return newest.ID, "🚀 " + name
}
