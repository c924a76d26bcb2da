package triage

import (
	"regexp"
	"strconv"
	"strings"
)

// parseYesNo recognizes the small fixed set of yes/no literals,
// case-insensitive. The second return value is false when the input is
// not a recognized answer and the question must be re-asked.
func parseYesNo(input string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "sim", "s", "yes", "y", "1":
		return true, true
	case "não", "nao", "n", "no", "0":
		return false, true
	}
	return false, false
}

// parseScale accepts only an integer literal in [0,4]. Out-of-range or
// non-numeric input returns ok=false so the caller re-prompts without
// advancing the cursor.
func parseScale(input string) (value int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 || n > 4 {
		return 0, false
	}
	return n, true
}

var (
	nationalIDPattern = regexp.MustCompile(`\d{3}\.?\d{3}\.?\d{3}-?\d{2}`)
	phonePattern      = regexp.MustCompile(`\(?(\d{2})\)?\s?\d{4,5}-?\d{4}`)
	digitsOnly        = regexp.MustCompile(`\D`)
)

// extractNationalID pulls a CPF-shaped digit sequence out of free text
// and normalizes it to digits only.
func extractNationalID(input string) (string, bool) {
	match := nationalIDPattern.FindString(input)
	if match == "" {
		return "", false
	}
	return digitsOnly.ReplaceAllString(match, ""), true
}

// extractPhone pulls a Brazilian phone-shaped digit sequence out of free
// text and normalizes it to digits only.
func extractPhone(input string) (string, bool) {
	match := phonePattern.FindString(input)
	if match == "" {
		return "", false
	}
	return digitsOnly.ReplaceAllString(match, ""), true
}

// parseName accepts a plausible full name: at least two tokens and no
// digits anywhere.
func parseName(input string) (string, bool) {
	name := strings.TrimSpace(input)
	if len(strings.Fields(name)) < 2 {
		return "", false
	}
	if strings.ContainsAny(name, "0123456789") {
		return "", false
	}
	return name, true
}
