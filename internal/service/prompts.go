package service

import (
	"fmt"
	"strings"
)

// Cloud task prompts are plain natural-language instructions for the
// provider's browser agent. The builders below keep the phrasing consistent
// across callers so result documents stay machine-extractable.

// ScrapeProfilePrompt builds a prompt that collects a single profile into a
// structured JSON document.
func ScrapeProfilePrompt(platform, profileURL string) string {
	return fmt.Sprintf(
		"Open %s on %s and extract the profile into JSON with keys: "+
			"name, headline, location, current_company, summary.",
		profileURL, platformLabel(platform),
	)
}

// SearchLeadsPrompt builds a prompt that searches the platform for people
// matching a query and returns them as a JSON list.
func SearchLeadsPrompt(platform, query string, limit int) string {
	if limit <= 0 {
		limit = 10
	}
	return fmt.Sprintf(
		"Search %s for people matching %q and return up to %d results as a "+
			"JSON list with keys: name, headline, profile_url.",
		platformLabel(platform), query, limit,
	)
}

// ConnectionRequestPrompt builds a prompt that sends a connection or follow
// request to a profile, optionally with a note.
func ConnectionRequestPrompt(platform, profileURL, note string) string {
	base := fmt.Sprintf(
		"Open %s on %s and send a connection request.",
		profileURL, platformLabel(platform),
	)
	note = strings.TrimSpace(note)
	if note == "" {
		return base
	}
	return fmt.Sprintf("%s Include this note: %q", base, note)
}

func platformLabel(platform string) string {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "linkedin":
		return "LinkedIn"
	case "x", "twitter":
		return "X"
	case "instagram":
		return "Instagram"
	default:
		return platform
	}
}
