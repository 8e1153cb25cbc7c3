// Package script turns a topic into the narration shown on screen.
package script

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gnzdotmx/pequebum/internal/failure"
	"github.com/gnzdotmx/pequebum/internal/topic"
	"github.com/gnzdotmx/pequebum/internal/utils"
)

// StyleSuffix is appended to every prompt template
const StyleSuffix = " Máximo 20 palabras, lenguaje muy sencillo, alegre y apto para niños pequeños."

// ErrNoCandidates is returned when the model answered without usable text
var ErrNoCandidates = errors.New("model returned no candidates")

// Source records where the narration came from
type Source string

const (
	SourceGenerated Source = "GENERATED"
	SourceFallback1 Source = "FALLBACK_1"
	SourceFallback2 Source = "FALLBACK_2"
)

// Script is the narration of one video. Text is never empty.
type Script struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Model is a text model returning zero or more candidate answers for a prompt
type Model interface {
	Candidates(ctx context.Context, prompt string) ([]string, error)
}

// Fallback is one pre-vetted narration, used when Handles accepts the
// generation error.
type Fallback struct {
	Source  Source
	Text    string
	Handles func(err error) bool
}

// DefaultFallbacks is tried in order after a failed generation
var DefaultFallbacks = []Fallback{
	{
		Source:  SourceFallback1,
		Text:    "¡Las abejas pueden reconocer rostros humanos!",
		Handles: func(err error) bool { return errors.Is(err, ErrNoCandidates) },
	},
	{
		Source:  SourceFallback2,
		Text:    "¡Los pulpos tienen tres corazones!",
		Handles: func(error) bool { return true },
	},
}

// Generator asks the model for a fun fact and degrades to the fallback chain
type Generator struct {
	model     Model
	timeout   time.Duration
	fallbacks []Fallback
}

// NewGenerator builds a generator. With no fallbacks given, DefaultFallbacks is used.
func NewGenerator(model Model, timeout time.Duration, fallbacks ...Fallback) *Generator {
	if len(fallbacks) == 0 {
		fallbacks = DefaultFallbacks
	}
	return &Generator{model: model, timeout: timeout, fallbacks: fallbacks}
}

// Prompt builds the instruction sent to the model for t
func Prompt(t topic.Topic) string {
	return t.PromptTemplate + StyleSuffix
}

// Generate never fails: any model problem resolves to a fallback narration
func (g *Generator) Generate(ctx context.Context, t topic.Topic) Script {
	text, err := g.ask(ctx, Prompt(t))
	if err == nil {
		utils.LogInfo("📝 Script: %s", text)
		return Script{Text: text, Source: SourceGenerated}
	}

	err = failure.Wrap(failure.KindGeneration, err, "text generation failed")
	s := g.fallback(err)
	utils.Logger().Warn().
		Err(err).
		Str("source", string(s.Source)).
		Msg("Using fallback narration")
	utils.LogInfo("📝 Script: %s", s.Text)
	return s
}

func (g *Generator) ask(ctx context.Context, prompt string) (string, error) {
	if g.model == nil {
		return "", errors.New("no text model configured")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	utils.LogDebug("Prompt: %s", prompt)
	candidates, err := g.model.Candidates(ctx, prompt)
	if err != nil {
		return "", err
	}

	for _, c := range candidates {
		if text := strings.TrimSpace(c); text != "" {
			return text, nil
		}
	}
	return "", ErrNoCandidates
}

func (g *Generator) fallback(err error) Script {
	for _, f := range g.fallbacks {
		if f.Text != "" && f.Handles != nil && f.Handles(err) {
			return Script{Text: f.Text, Source: f.Source}
		}
	}
	// Nothing matched: the last entry that has text, then the built-in chain.
	for _, chain := range [][]Fallback{g.fallbacks, DefaultFallbacks} {
		for i := len(chain) - 1; i >= 0; i-- {
			if chain[i].Text != "" {
				return Script{Text: chain[i].Text, Source: chain[i].Source}
			}
		}
	}
	return Script{}
}
