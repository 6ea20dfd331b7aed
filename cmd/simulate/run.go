package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/internal/repository/memory"
	"grant-assistant-be/internal/service"
	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/catalog"
	"grant-assistant-be/pkg/engine/followup"
	"grant-assistant-be/pkg/engine/graph"
	"grant-assistant-be/pkg/engine/policy"
	"grant-assistant-be/pkg/engine/rubric"
	"grant-assistant-be/pkg/engine/subsidy"
	"grant-assistant-be/pkg/llm"
	"grant-assistant-be/pkg/llm/factory"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//go:embed script.yaml
var defaultScript []byte

const fillerText = "We serve local families with quality food and friendly service every day."

type script struct {
	Answers   map[string]interface{} `yaml:"answers"`
	DeepDives []string               `yaml:"deep_dives"`
}

type runOptions struct {
	scriptPath  string
	rubricPath  string
	catalogPath string
	provider    string
	model       string
	baseURL     string
	maxTurns    int
}

func runCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play a scripted applicant through a full interview",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterview(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.scriptPath, "script", "", "YAML answer script (defaults to the built-in cafe applicant)")
	cmd.Flags().StringVar(&opts.rubricPath, "rubric", "", "Rubric YAML overlay")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "Question catalog YAML")
	cmd.Flags().StringVar(&opts.provider, "llm", "none", "Deep-dive provider: none, ollama or huggingface")
	cmd.Flags().StringVar(&opts.model, "model", "llama3", "Deep-dive model name")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Provider base URL")
	cmd.Flags().IntVar(&opts.maxTurns, "max-turns", 120, "Stop after this many turns")
	return cmd
}

func loadScript(path string) (script, error) {
	data := defaultScript
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return script{}, err
		}
	}
	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return script{}, fmt.Errorf("parse script: %w", err)
	}
	if s.Answers == nil {
		s.Answers = map[string]interface{}{}
	}
	return s, nil
}

func buildService(opts runOptions) (service.IInterviewService, error) {
	rb := rubric.Default()
	if opts.rubricPath != "" {
		loaded, err := rubric.Load(opts.rubricPath)
		if err != nil {
			return nil, err
		}
		rb = loaded
	}

	cat, err := catalog.Default()
	if opts.catalogPath != "" {
		cat, err = catalog.Load(opts.catalogPath)
	}
	if err != nil {
		return nil, err
	}

	var provider llm.LLMProvider
	provider, err = factory.NewLLMProvider(factory.Config{
		Provider: opts.provider,
		Model:    opts.model,
		BaseURL:  opts.baseURL,
		APIKey:   os.Getenv("HUGGINGFACE_API_KEY"),
	})
	if err != nil && !errors.Is(err, factory.ErrDisabled) {
		return nil, err
	}

	log := logger.NewNopLogger()
	p := policy.New(cat, rb, followup.NewGenerator(provider, 30*time.Second), log, policy.DefaultConfig())
	return service.NewInterviewService(memory.NewInterviewRepository(time.Hour), p, subsidy.NewCalculator(rb.Budget), nil, nil, log), nil
}

func runInterview(ctx context.Context, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sc, err := loadScript(opts.scriptPath)
	if err != nil {
		return err
	}
	svc, err := buildService(opts)
	if err != nil {
		return err
	}

	started, err := svc.Start(ctx, nil)
	if err != nil {
		return err
	}
	color.Cyan("Interview %s started\n", started.Id)

	q := started.Question
	deepDives := 0
	for turn := 0; q != nil && turn < opts.maxTurns; turn++ {
		var answer answers.Value
		if q.ParentID != "" {
			if deepDives < len(sc.DeepDives) {
				answer = answers.String(sc.DeepDives[deepDives])
			} else {
				answer = answers.String("")
			}
			deepDives++
		} else {
			answer, err = scriptedAnswer(sc, q)
			if err != nil {
				return err
			}
		}

		color.Yellow("\n[%s] %s", q.ID, q.Text)
		fmt.Printf("  > %s\n", answer.Text())

		res, err := svc.SubmitAnswer(ctx, &dto.SubmitAnswerRequest{InterviewId: started.Id, QuestionId: q.ID, Answer: answer})
		if err != nil {
			return err
		}
		printTurn(res)

		// Take the recommended value once so the scripted run can move on
		if res.RequiresCorrection && res.Data.Issue != nil && res.Data.Issue.RecommendedValue != nil {
			sc.Answers[res.Data.Issue.Field] = *res.Data.Issue.RecommendedValue
		}
		q = res.Data.Question
	}

	status, err := svc.Status(ctx, started.Id)
	if err != nil {
		return err
	}
	grant, err := svc.Subsidy(ctx, started.Id)
	if err != nil {
		return err
	}

	color.Cyan("\nFinished after %d turns", status.TurnCount)
	fmt.Printf("  score: %d (%s)\n", status.Score.Overall, status.Score.OverallStatus)
	fmt.Printf("  submittable: %t\n", status.Submittable)
	fmt.Printf("  grant: %d yen (restricted %d, bound by %s)\n", grant.TotalGrant, grant.RestrictedGrant, grant.BindingCap)
	for _, issue := range status.BlockingIssues {
		color.Red("  blocking: %s", issue.Message)
	}
	return nil
}

func scriptedAnswer(sc script, q *graph.Question) (answers.Value, error) {
	if raw, ok := sc.Answers[q.ID]; ok {
		return answers.FromInterface(raw)
	}
	switch {
	case len(q.Options) > 0 && q.Type == graph.TypeMultiSelect:
		return answers.Strings(q.Options[0].Value), nil
	case len(q.Options) > 0:
		return answers.String(q.Options[0].Value), nil
	case q.Type == graph.TypeNumber:
		return answers.Number(1), nil
	default:
		return answers.String(fillerText), nil
	}
}

func printTurn(res *dto.TurnResponse) {
	switch res.Action {
	case policy.ActionFlagCritical:
		color.Red("  %s: %s", res.Action, res.Message)
	case policy.ActionFlagHighPriority, policy.ActionSuggestImprovement:
		color.Magenta("  %s: %s", res.Action, res.Message)
	case policy.ActionDeepDive:
		color.Blue("  %s: %s", res.Action, res.Message)
	default:
		color.Green("  %s (score %d)", res.Action, res.Data.Score)
	}
}
