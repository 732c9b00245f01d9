package extract

import (
	"fmt"
	"strings"
)

// buildSystemPrompt composes the extraction instructions: field definitions,
// JSON-only output rules, optional default-address context, and the
// single-field instruction for clarification rounds.
func buildSystemPrompt(defaultAddress, overrideField string) string {
	parts := []string{
		"You are a delivery-job intake parser for a parts courier service.",
		"Return ONLY a single JSON object, no prose and no code fences.",
		"The object has exactly these keys:",
		`"parts" (array of strings, item descriptions in the order mentioned),`,
		`"pickup" (string, pickup location as stated),`,
		`"dropoff" (string, delivery location as stated),`,
		`"deadline" (string, deadline phrase verbatim, e.g. "next tues by 2pm").`,
		"Use an empty string (or empty array) for anything not yet mentioned.",
		"Copy location and deadline text faithfully; do not invent details.",
	}

	if defaultAddress != "" {
		parts = append(parts,
			"The customer's address on file is: "+defaultAddress+".",
			`When they say "my shop", "here", "my place" or similar, substitute that address.`)
	}

	if overrideField != "" {
		parts = append(parts, fmt.Sprintf(
			"This turn corrects only the %q field. Extract just that field from the latest message and leave the other keys as previously discussed (empty is fine).",
			overrideField))
	}

	return strings.Join(parts, " ")
}

// buildUserPrompt packages the transcript and the latest message.
func buildUserPrompt(transcript, latest string) string {
	var b strings.Builder
	if transcript != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(transcript)
		b.WriteString("\n")
	}
	b.WriteString("Latest message:\n")
	b.WriteString(latest)
	return b.String()
}
