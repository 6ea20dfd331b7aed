// Package followup asks the completion service for one deep-dive question
// targeting a gap in the user's answer.
package followup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"grant-assistant-be/pkg/llm"
)

var (
	ErrTimeout           = errors.New("deep-dive generation timed out")
	ErrMalformedResponse = errors.New("malformed deep-dive response")
)

// Request carries what the completion service needs to phrase a follow-up
type Request struct {
	ParentQuestionID   string
	ParentQuestionText string
	UserAnswer         string
	MissingElements    []string
	Context            map[string]string
}

// Question is a generated deep-dive
type Question struct {
	Text            string `json:"text"`
	Placeholder     string `json:"placeholder,omitempty"`
	TargetedElement string `json:"targeted_element,omitempty"`
}

// Outcome discriminates Result
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSome
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSome:
		return "some"
	case OutcomeFailure:
		return "failure"
	default:
		return "none"
	}
}

// Result is Some(question), None or Failure(err)
type Result struct {
	Outcome  Outcome
	Question Question
	Err      error
}

func Some(q Question) Result { return Result{Outcome: OutcomeSome, Question: q} }
func None() Result { return Result{Outcome: OutcomeNone} }
func Failure(err error) Result { return Result{Outcome: OutcomeFailure, Err: err} }
func (r Result) Produced() bool { return r.Outcome == OutcomeSome }

// Source produces deep-dive questions; Generator is the LLM-backed implementation
type Source interface {
	Generate(ctx context.Context, req Request) Result
}

const (
	maxContextEntries = 12
	maxContextRunes   = 160
)

type Generator struct {
	provider llm.LLMProvider
	timeout  time.Duration
}

var _ Source = (*Generator)(nil)

// NewGenerator wraps provider; a nil provider always yields None
func NewGenerator(provider llm.LLMProvider, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Generator{provider: provider, timeout: timeout}
}

// Generate never blocks longer than the configured timeout
func (g *Generator) Generate(ctx context.Context, req Request) Result {
	if g.provider == nil {
		return None()
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := g.provider.Chat(ctx, []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildPrompt(req)},
		}, llm.WithJSON(), llm.WithTemperature(0.3), llm.WithMaxTokens(300))
		done <- reply{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Failure(ErrTimeout)
		}
		return Failure(ctx.Err())
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return Failure(ErrTimeout)
			}
			return Failure(fmt.Errorf("completion service: %w", r.err))
		}
		return parseResponse(r.text)
	}
}

const systemPrompt = "You help small business owners complete a government grant application. " +
	"You ask one short, friendly follow-up question that draws out a concrete missing detail. " +
	"Respond with ONLY valid JSON."

func buildPrompt(req Request) string {
	var prompt strings.Builder

	prompt.WriteString("<question>\n")
	prompt.WriteString(req.ParentQuestionText)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("<answer>\n")
	prompt.WriteString(req.UserAnswer)
	prompt.WriteString("\n</answer>\n\n")

	if len(req.MissingElements) > 0 {
		prompt.WriteString("<missing_elements>\n")
		for _, m := range req.MissingElements {
			prompt.WriteString("- " + m + "\n")
		}
		prompt.WriteString("</missing_elements>\n\n")
	}

	if len(req.Context) > 0 {
		prompt.WriteString("<context>\n")
		keys := make([]string, 0, len(req.Context))
		for k := range req.Context {
			if k != req.ParentQuestionID {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		if len(keys) > maxContextEntries {
			keys = keys[:maxContextEntries]
		}
		for _, k := range keys {
			prompt.WriteString(k + ": " + truncate(req.Context[k], maxContextRunes) + "\n")
		}
		prompt.WriteString("</context>\n\n")
	}

	prompt.WriteString("<rules>\n")
	prompt.WriteString("- If the answer is already specific and backed by examples or figures, set needed to false.\n")
	prompt.WriteString("- Otherwise ask exactly one question targeting the most important missing element.\n")
	prompt.WriteString("- Give a realistic example answer as placeholder_example.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"needed\": true,\n")
	prompt.WriteString("  \"question_text\": \"the follow-up question\",\n")
	prompt.WriteString("  \"placeholder_example\": \"an example answer\",\n")
	prompt.WriteString("  \"targeted_missing_element\": \"one of the missing elements\"\n")
	prompt.WriteString("}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

type wireResponse struct {
	Needed             *bool  `json:"needed"`
	QuestionText       string `json:"question_text"`
	QuestionTextAlt    string `json:"questionText"`
	Placeholder        string `json:"placeholder_example"`
	PlaceholderAlt     string `json:"placeholderExample"`
	TargetedMissing    string `json:"targeted_missing_element"`
	TargetedMissingAlt string `json:"targetedMissingElement"`
}

func parseResponse(response string) Result {
	content := extractJSON(response)
	if content == "" {
		return Failure(fmt.Errorf("%w: no JSON found", ErrMalformedResponse))
	}

	var wire wireResponse
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return Failure(fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	if wire.Needed == nil {
		return Failure(fmt.Errorf("%w: missing needed flag", ErrMalformedResponse))
	}
	if !*wire.Needed {
		return None()
	}

	q := Question{
		Text:            firstNonEmpty(wire.QuestionText, wire.QuestionTextAlt),
		Placeholder:     firstNonEmpty(wire.Placeholder, wire.PlaceholderAlt),
		TargetedElement: firstNonEmpty(wire.TargetedMissing, wire.TargetedMissingAlt),
	}
	if q.Text == "" {
		return Failure(fmt.Errorf("%w: empty question", ErrMalformedResponse))
	}
	return Some(q)
}

func extractJSON(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return response[start : end+1]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
