package corpus

import (
	"fmt"
	"strconv"
	"strings"
)

// List-valued MupeTalk columns (file_path, file_id) are persisted as a
// bracketed literal, e.g. ['train/1.wav', 'train/2.wav']. The parser accepts
// both single- and double-quoted elements so tables written by earlier
// tooling load unchanged. Serialization followed by parsing yields the
// identical ordered list.

// FormatStringList serializes a string list column value.
func FormatStringList(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(s, "'", `\'`))
		b.WriteByte('\'')
	}
	b.WriteByte(']')
	return b.String()
}

// FormatIntList serializes an integer list column value.
func FormatIntList(items []int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, n := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseStringList parses a bracketed string list literal. A bare (unbracketed)
// value is treated as a single-element list, matching how ad-hoc rows were
// written before list columns were normalized.
func ParseStringList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") {
		return []string{s}, nil
	}
	if !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("unterminated list literal: %q", s)
	}
	inner := s[1 : len(s)-1]
	var out []string
	i := 0
	for i < len(inner) {
		for i < len(inner) && (inner[i] == ' ' || inner[i] == ',') {
			i++
		}
		if i >= len(inner) {
			break
		}
		quote := inner[i]
		if quote != '\'' && quote != '"' {
			return nil, fmt.Errorf("expected quoted element at offset %d in %q", i, s)
		}
		i++
		var b strings.Builder
		for i < len(inner) {
			c := inner[i]
			if c == '\\' && i+1 < len(inner) {
				b.WriteByte(inner[i+1])
				i += 2
				continue
			}
			if c == quote {
				break
			}
			b.WriteByte(c)
			i++
		}
		if i >= len(inner) {
			return nil, fmt.Errorf("unterminated element in %q", s)
		}
		i++ // closing quote
		out = append(out, b.String())
	}
	return out, nil
}

// ParseIntList parses a bracketed integer list literal.
func ParseIntList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("parse int list %q: %w", s, err)
		}
		return []int{n}, nil
	}
	if !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("unterminated list literal: %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}
	parts := strings.Split(inner, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse int list %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}
