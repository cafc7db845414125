// Package jsonx salvages a single JSON object out of free-form model text.
// Vision and language models are asked for strict JSON but routinely wrap it
// in code fences, commentary, or leave small defects like trailing commas;
// every model-output consumer in this service goes through the same routine.
package jsonx

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"roomSenseAi/internal/fault"
)

var (
	fencePattern        = regexp.MustCompile("(?i)```(?:json)?")
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
)

// Sanitize strips code fences, trims per-line trailing whitespace, removes
// trailing commas before closing braces/brackets, and extracts the outermost
// object between the first '{' and the last '}'.
func Sanitize(raw string) string {
	cleaned := fencePattern.ReplaceAllString(raw, "")
	cleaned = strings.TrimSpace(cleaned)

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	cleaned = strings.Join(lines, "\n")

	cleaned = trailingCommaObject.ReplaceAllString(cleaned, "}")
	cleaned = trailingCommaArray.ReplaceAllString(cleaned, "]")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

// Extract sanitizes raw model text and unmarshals the candidate object into v.
// If strict parsing fails it runs one generic repair pass and retries; if that
// also fails the original parse error is surfaced together with the candidate
// payload. It never returns a guessed partial structure.
func Extract(raw string, v any) error {
	candidate := Sanitize(raw)

	strictErr := json.Unmarshal([]byte(candidate), v)
	if strictErr == nil {
		return nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(candidate)
	if repairErr == nil {
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return nil
		}
	}

	return &fault.UnparsableError{Payload: candidate, Err: strictErr}
}
