// Package ai wraps the external language-model providers behind one small
// interface and holds the prompts and response parsing built on it.
package ai

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrEmptyResponse = errors.New("model returned no content")

// Gateway sends one prompt to a model and returns its raw text. system may
// be empty.
type Gateway interface {
	Ask(ctx context.Context, prompt, system string) (string, error)
}

// ConnectionErrorPrefix starts every degraded reply shown to users.
const ConnectionErrorPrefix = "AI Connection Error: "

// Reply asks gw and degrades any failure to a user-visible placeholder that
// carries the error text.
func Reply(ctx context.Context, gw Gateway, prompt, system string) string {
	text, err := gw.Ask(ctx, prompt, system)
	if err != nil {
		return ConnectionErrorPrefix + err.Error()
	}
	return text
}

type Observer interface {
	ObserveAI(provider string, d time.Duration, err error)
}

type observed struct {
	next     Gateway
	provider string
	obs      Observer
}

// Observe reports the latency and outcome of every call on gw.
func Observe(gw Gateway, provider string, obs Observer) Gateway {
	if obs == nil {
		return gw
	}
	return &observed{next: gw, provider: provider, obs: obs}
}

func (o *observed) Ask(ctx context.Context, prompt, system string) (string, error) {
	start := time.Now()
	text, err := o.next.Ask(ctx, prompt, system)
	o.obs.ObserveAI(o.provider, time.Since(start), err)
	return text, err
}

func nonEmpty(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
