package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/datachat/datachat/internal/genai"
	"github.com/datachat/datachat/internal/observability"
	"github.com/datachat/datachat/internal/query"
	"github.com/datachat/datachat/internal/schema"
)

const (
	stageGenerateSQL    = "generate_sql"
	stageValidate       = "validate"
	stageExecute        = "execute"
	stageGenerateAnswer = "generate_answer"
)

// Service runs one chat request through the pipeline: schema → prompt →
// generation → extraction → validation → execution → answer synthesis.
// Requests are independent; the schema cache is the only shared state.
type Service struct {
	Schema    schema.Cache
	Generator genai.Generator
	Executor  query.Executor
	Logger    *slog.Logger

	// Per-call deadlines for the external collaborators. A collaborator
	// that hangs becomes the same generic failure as one that errors.
	GenerateTimeout time.Duration
	ExecuteTimeout  time.Duration

	// MaxHistoryTurns bounds the transcript embedded into the prompt;
	// only the most recent turns are kept. Zero keeps everything.
	MaxHistoryTurns int
}

// Answer resolves a chat request to a natural-language answer. A nil error
// with a non-empty answer covers both real answers and the clarification
// fallback; any returned error maps to the single generic failure response
// at the HTTP boundary.
func (s *Service) Answer(ctx context.Context, req Request) (string, error) {
	logger := s.logger().With(slog.String("session_id", req.SessionID))

	schemaText := s.Schema.Get(ctx)
	prompt := BuildQueryPrompt(schemaText, req.CompanyID, req.UserID, req.Question, s.trimHistory(req.History))

	raw, err := s.generate(ctx, prompt, "sql")
	if err != nil {
		return s.fail(logger, stageGenerateSQL, fmt.Errorf("%w: %v", ErrGeneration, err))
	}

	candidate := ExtractQuery(raw)
	if candidate == "" {
		logger.InfoContext(ctx, "empty candidate query, asking for clarification")
		observability.ObserveChatOutcome(observability.ChatOutcomeClarified)
		return ClarificationAnswer(req.Question), nil
	}

	if err := Validate(candidate, req.CompanyID, req.UserID); err != nil {
		logger.WarnContext(ctx, "candidate query rejected",
			slog.String("candidate", candidate),
			slog.Any("error", err),
		)
		observability.ObserveChatStageFailure(stageValidate)
		observability.ObserveChatOutcome(observability.ChatOutcomeFailed)
		return "", err
	}

	result, err := s.execute(ctx, candidate)
	if err != nil {
		return s.fail(logger, stageExecute, fmt.Errorf("%w: %v", ErrExecution, err))
	}

	answer, err := s.generate(ctx, BuildAnswerPrompt(req.Question, result), "answer")
	if err != nil {
		return s.fail(logger, stageGenerateAnswer, fmt.Errorf("%w: %v", ErrGeneration, err))
	}

	observability.ObserveChatOutcome(observability.ChatOutcomeAnswered)
	return strings.TrimSpace(answer), nil
}

// ClarificationAnswer is the canned non-answer for an empty candidate
// query. Not an error path: the user gets a friendly nudge to rephrase.
func ClarificationAnswer(question string) string {
	return fmt.Sprintf("I couldn't turn your question %q into a database lookup. Could you rephrase it? I can help with questions about your company's data.", question)
}

func (s *Service) generate(ctx context.Context, prompt, purpose string) (string, error) {
	callCtx, cancel := s.withTimeout(ctx, s.GenerateTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.Generator.Generate(callCtx, prompt)
	observability.ObserveGeneration(purpose, time.Since(start))
	return text, err
}

func (s *Service) execute(ctx context.Context, sqlText string) (query.Result, error) {
	callCtx, cancel := s.withTimeout(ctx, s.ExecuteTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.Executor.Execute(callCtx, sqlText)
	observability.ObserveQueryExecution(time.Since(start))
	return result, err
}

func (s *Service) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *Service) trimHistory(history []Turn) []Turn {
	if s.MaxHistoryTurns <= 0 || len(history) <= s.MaxHistoryTurns {
		return history
	}
	return history[len(history)-s.MaxHistoryTurns:]
}

func (s *Service) fail(logger *slog.Logger, stage string, err error) (string, error) {
	logger.Error("chat pipeline stage failed",
		slog.String("stage", stage),
		slog.Any("error", err),
	)
	observability.ObserveChatStageFailure(stage)
	observability.ObserveChatOutcome(observability.ChatOutcomeFailed)
	return "", err
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
