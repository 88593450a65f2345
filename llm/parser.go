package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// draft is the parsed shape of one LLM response before the gate runs.
type draft struct {
	Headline string
	Body     string
	Context  *string
	Sources  []string
	SideCar  map[string]interface{}
}

var sectionOrder = []string{"HEADLINE", "BRIEF", "CONTEXT", "SOURCES", "SIDE-CAR"}

// parseSections tolerantly splits the fixed five-section markup: a
// SIDE-CAR JSON parse failure defaults to an empty object, a CONTEXT
// value of "None" (any case) maps to nil, and URLs have trailing
// punctuation stripped.
func parseSections(raw string) (*draft, error) {
	sections := make(map[string]string)
	var current string
	var buf strings.Builder

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(buf.String())
		}
		buf.Reset()
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		matched := false
		for _, name := range sectionOrder {
			if trimmed == "=="+name+"==" {
				flush()
				current = name
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if current != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	flush()

	if sections["HEADLINE"] == "" || sections["BRIEF"] == "" {
		return nil, &RewriteError{Kind: KindParseError}
	}

	d := &draft{
		Headline: sections["HEADLINE"],
		Body:     sections["BRIEF"],
	}

	if ctx, ok := sections["CONTEXT"]; ok && ctx != "" {
		if !strings.EqualFold(strings.TrimSpace(ctx), "none") {
			c := ctx
			d.Context = &c
		}
	}

	for _, line := range strings.Split(sections["SOURCES"], "\n") {
		u := stripTrailingPunctuation(strings.TrimSpace(line))
		if u != "" {
			d.Sources = append(d.Sources, u)
		}
	}

	d.SideCar = map[string]interface{}{}
	if raw := strings.TrimSpace(sections["SIDE-CAR"]); raw != "" {
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			d.SideCar = parsed
		}
	}

	return d, nil
}

var trailingPunctuation = regexp.MustCompile(`[),.;:"']+$`)

func stripTrailingPunctuation(s string) string {
	return trailingPunctuation.ReplaceAllString(s, "")
}
