// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

// Package i18n localizes the bot's Discord-facing replies. Prompts sent to
// language models are not localized; only what users read is.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.json
var translationsFS embed.FS

// Bundle holds every embedded translation. English is the default language;
// call sites carry their own default message so a missing entry never breaks
// a reply.
type Bundle struct {
	bundle *i18n.Bundle
}

func New() (*Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := translationsFS.ReadDir("translations")
	if err != nil {
		return nil, fmt.Errorf("failed to read translations directory: %w", err)
	}
	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(translationsFS, "translations/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("failed to load translation file %s: %w", entry.Name(), err)
		}
	}

	return &Bundle{bundle: bundle}, nil
}

// LocalizerFunc binds a locale and returns the translation function handlers
// use. Args are formatted into the localized template with fmt.Sprintf, so
// translations keep the same printf verbs as their defaults.
func LocalizerFunc(bundle *Bundle, locale string) func(id, defaultMessage string, args ...any) string {
	localizer := i18n.NewLocalizer(bundle.bundle, locale)
	return func(id, defaultMessage string, args ...any) string {
		message, err := localizer.Localize(&i18n.LocalizeConfig{
			DefaultMessage: &i18n.Message{
				ID:    id,
				Other: defaultMessage,
			},
		})
		if err != nil || message == "" {
			message = defaultMessage
		}
		if len(args) > 0 {
			return fmt.Sprintf(message, args...)
		}
		return message
	}
}
