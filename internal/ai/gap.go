package ai

import (
	"context"
	"errors"
	"strings"
)

var ErrMalformedGap = errors.New("gap analysis response has no MATCHED/MISSING delimiter")

// Gap is the matched/missing skill split shown on the dashboard.
type Gap struct {
	Matched []string `json:"matching_skills"`
	Missing []string `json:"missing_skills"`
}

// FallbackGap is shown whenever the model call or the parse fails.
func FallbackGap() Gap {
	return Gap{
		Matched: []string{"Check Profile"},
		Missing: []string{"AI Sync Failed"},
	}
}

// ParseGap reads "MATCHED: a, b | MISSING: c, d". Text after a second '|'
// is ignored.
func ParseGap(text string) (Gap, error) {
	parts := strings.Split(text, "|")
	if len(parts) < 2 {
		return Gap{}, ErrMalformedGap
	}

	return Gap{
		Matched: splitSkills(strings.ReplaceAll(parts[0], "MATCHED:", "")),
		Missing: splitSkills(strings.ReplaceAll(parts[1], "MISSING:", "")),
	}, nil
}

func splitSkills(s string) []string {
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, strings.TrimSpace(item))
	}
	return out
}

// AnalyzeGap asks gw for the gap between skills and target. Any failure
// returns FallbackGap along with the cause, which callers only log.
func AnalyzeGap(ctx context.Context, gw Gateway, target, skills string) (Gap, error) {
	if target == "" {
		target = DefaultTarget
	}
	if skills == "" {
		skills = DefaultSkills
	}

	text, err := gw.Ask(ctx, GapPrompt(target, skills), "")
	if err != nil {
		return FallbackGap(), err
	}

	gap, err := ParseGap(text)
	if err != nil {
		return FallbackGap(), err
	}
	return gap, nil
}
