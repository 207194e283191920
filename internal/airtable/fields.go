package airtable

import "strings"

// String returns the named field as a trimmed string, or "" when absent or
// not a string.
func (r Record) String(name string) string {
	v, ok := r.Fields[name]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Float returns the named field as a float64, or the fallback when absent.
func (r Record) Float(name string, fallback float64) float64 {
	v, ok := r.Fields[name]
	if !ok {
		return fallback
	}
	f, ok := v.(float64)
	if !ok {
		return fallback
	}
	return f
}

// Int returns the named field as an int, or the fallback when absent.
// Airtable delivers all numbers as JSON floats.
func (r Record) Int(name string, fallback int) int {
	v, ok := r.Fields[name]
	if !ok {
		return fallback
	}
	f, ok := v.(float64)
	if !ok {
		return fallback
	}
	return int(f)
}

// Strings returns the named field as a list of strings (linked-record
// fields arrive as arrays of record ids).
func (r Record) Strings(name string) []string {
	v, ok := r.Fields[name]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Attachments returns the named field as a list of attachments.
func (r Record) Attachments(name string) []Attachment {
	v, ok := r.Fields[name]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Attachment, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		att := Attachment{}
		if u, ok := entry["url"].(string); ok {
			att.URL = u
		}
		if f, ok := entry["filename"].(string); ok {
			att.Filename = f
		}
		if att.URL != "" {
			out = append(out, att)
		}
	}
	return out
}
