package ai

import "context"

// Static answers every prompt with the same text, or the same error. Used
// when no provider is configured and in tests.
type Static struct {
	Text string
	Err  error
}

func (s Static) Ask(_ context.Context, _, _ string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}
