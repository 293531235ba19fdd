package segmentation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// unmarshalFlexible parses model output into out, tolerating double-encoded
// strings and mildly malformed JSON. Anything that still fails after repair
// is a clean error; partial trees are never returned.
func unmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: %w", err)
	}
	return nil
}

// validate rejects trees that violate the segmentation schema: an empty
// tree or any leaf without a timestamp is a collaborator bug, not data.
func validate(res *Result) error {
	if len(res.Segments) == 0 {
		return fmt.Errorf("segmentation tree has no sections")
	}
	for _, sec := range res.Segments {
		if strings.TrimSpace(sec.Title) == "" {
			return fmt.Errorf("segmentation tree has a section with an empty title")
		}
		for _, sub := range sec.Subsections {
			for _, item := range sub.Items {
				if item.ID < 0 {
					return fmt.Errorf("section %q: negative question id %d", sec.Title, item.ID)
				}
			}
		}
	}
	return nil
}
