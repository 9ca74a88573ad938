// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package advisor orchestrates advisor turns: prompt construction,
// single-flight worker lifecycle, and transcript updates.
package advisor

import (
	"strconv"
	"strings"

	"github.com/morganforge/breachadvisor/internal/hibp"
)

// =============================================================================
// SYSTEM INSTRUCTION
// =============================================================================

// instructionPrefix is prepended to every prompt sent to the model. The
// transcript surface displays responses verbatim, so the model must be
// steered hard away from markup. This text is a fixed contract, not
// configurable per turn.
const instructionPrefix = "SYSTEM INSTRUCTION: CRITICAL: Your entire response MUST be plain text." +
	"ABSOLUTELY NO MARKDOWN formatting is allowed, no exceptions." +
	"DO NOT use asterisks (*). DO NOT use hashtags (#). DO NOT use underscores (_). DO NOT use backticks (`)." +
	"DO NOT use any characters or syntax for bold, italics, headers, code, or lists that resemble Markdown." +
	"If you want to make a list, each item MUST be on a new line, starting with plain text. NO hyphens, NO asterisks." +
	"For example, a list should look like this:\n" +
	"Separate paragraphs with a single blank line (two newlines). " +
	"Focus on clarity, proper spelling, and grammar. Your output will be displayed as-is, so it must be clean plain text.\n\n" +
	"Make sure to use the information provided in the context to provide a good quality answer."

// composePrompt builds the final prompt for one turn.
func composePrompt(promptBody string) string {
	return instructionPrefix + promptBody
}

// =============================================================================
// BREACH CONTEXT
// =============================================================================

// BreachContext renders the detailed context block handed to the model after
// a breach lookup.
func BreachContext(account string, breaches []hibp.Breach) string {
	if len(breaches) == 0 {
		return "HIBP Check Summary for " + account + ": No breaches found."
	}

	parts := []string{"Detailed HIBP Check Results for account: " + account}
	for _, b := range breaches {
		parts = append(parts,
			"--- Breach Details ---",
			"Title: "+b.Title,
			"Domain: "+b.Domain,
			"BreachDate: "+b.BreachDate,
			"PwnCount: "+strconv.Itoa(b.PwnCount),
			"DataClasses: "+b.DataClassList(),
			"Description (HTML): "+b.Description,
			"--- End Breach Details ---",
		)
	}
	return strings.Join(parts, "\n")
}

// advicePrompt wraps breach context in the standing security-advisor request.
func advicePrompt(context string) string {
	return "The following data breach information has been found related to an account. " +
		"Please act as a security advisor and provide detailed, actionable advice on what steps should be taken " +
		"to mitigate risks. For each breach, consider the types of data compromised and suggest specific " +
		"recommendations (e.g., changing passwords, monitoring accounts, enabling 2FA). " +
		"\nData Breach Information:\n" +
		context
}

// =============================================================================
// RESULT FORMATTING
// =============================================================================

// FormatLookupSummary renders the human-readable breach summary shown in the
// results surface.
func FormatLookupSummary(account string, breaches []hibp.Breach) string {
	if len(breaches) == 0 {
		return "No breaches found for " + account + "."
	}

	var sb strings.Builder
	sb.WriteString("Found " + strconv.Itoa(len(breaches)) + " breach(es) for " + account + ":\n\n")
	for _, b := range breaches {
		sb.WriteString("- " + b.Title + " (" + b.BreachDate + ")\n")
		sb.WriteString("  Domain: " + b.Domain + "\n")
		sb.WriteString("  Compromised data: " + b.DataClassList() + "\n\n")
	}
	return sb.String()
}
