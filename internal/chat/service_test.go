package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/datachat/datachat/internal/query"
)

func TestAnswerHappyPath(t *testing.T) {
	generator := &fakeGenerator{
		responses: []string{
			"```sql\nSELECT COUNT(*) FROM buildings WHERE \"companyId\" = 'c1';\n```",
			"You currently have 3 buildings registered.",
		},
	}
	executor := &fakeExecutor{
		result: query.Result{Columns: []string{"count"}, Rows: [][]query.Scalar{{query.Number(3)}}},
	}
	service := &Service{
		Schema:    &fakeCache{description: "Table buildings:\n  - id (text)"},
		Generator: generator,
		Executor:  executor,
	}

	answer, err := service.Answer(context.Background(), Request{
		CompanyID: "c1",
		UserID:    "u1",
		Question:  "quantos prédios eu tenho?",
		SessionID: "s1",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != "You currently have 3 buildings registered." {
		t.Fatalf("Answer() = %q", answer)
	}
	if len(executor.queries) != 1 {
		t.Fatalf("executed queries = %d", len(executor.queries))
	}
	if executor.queries[0] != `SELECT COUNT(*) FROM buildings WHERE "companyId" = 'c1';` {
		t.Fatalf("executed query = %q", executor.queries[0])
	}
	if len(generator.prompts) != 2 {
		t.Fatalf("generator calls = %d", len(generator.prompts))
	}
	if !strings.Contains(generator.prompts[1], "count=3") {
		t.Fatalf("answer prompt missing rows:\n%s", generator.prompts[1])
	}
}

func TestAnswerEmptyGenerationYieldsClarification(t *testing.T) {
	executor := &fakeExecutor{}
	service := &Service{
		Schema:    &fakeCache{description: "schema"},
		Generator: &fakeGenerator{responses: []string{"   "}},
		Executor:  executor,
	}

	answer, err := service.Answer(context.Background(), Request{
		CompanyID: "c1", UserID: "u1", Question: "???",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != ClarificationAnswer("???") {
		t.Fatalf("Answer() = %q", answer)
	}
	if len(executor.queries) != 0 {
		t.Fatal("no database call may occur for an empty candidate")
	}
}

func TestAnswerUnsafeCandidateFailsWithoutExecution(t *testing.T) {
	executor := &fakeExecutor{}
	service := &Service{
		Schema:    &fakeCache{description: "schema"},
		Generator: &fakeGenerator{responses: []string{"DROP TABLE users;"}},
		Executor:  executor,
	}

	_, err := service.Answer(context.Background(), Request{
		CompanyID: "c1", UserID: "u1", Question: "drop everything",
	})
	if !errors.Is(err, ErrUnsafeQuery) {
		t.Fatalf("Answer() error = %v, want ErrUnsafeQuery", err)
	}
	if len(executor.queries) != 0 {
		t.Fatal("no database call may occur for an unsafe candidate")
	}
}

func TestAnswerUnscopedCandidateIsRejected(t *testing.T) {
	service := &Service{
		Schema:    &fakeCache{description: "schema"},
		Generator: &fakeGenerator{responses: []string{"SELECT * FROM buildings"}},
		Executor:  &fakeExecutor{},
	}

	_, err := service.Answer(context.Background(), Request{
		CompanyID: "c1", UserID: "u1", Question: "list all buildings of everyone",
	})
	if !errors.Is(err, ErrUnsafeQuery) {
		t.Fatalf("Answer() error = %v, want ErrUnsafeQuery", err)
	}
}

func TestAnswerGenerationFailure(t *testing.T) {
	service := &Service{
		Schema:    &fakeCache{description: "schema"},
		Generator: &fakeGenerator{err: errors.New("quota exceeded")},
		Executor:  &fakeExecutor{},
	}

	_, err := service.Answer(context.Background(), Request{
		CompanyID: "c1", UserID: "u1", Question: "q",
	})
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("Answer() error = %v, want ErrGeneration", err)
	}
}

func TestAnswerExecutionFailure(t *testing.T) {
	service := &Service{
		Schema:    &fakeCache{description: "schema"},
		Generator: &fakeGenerator{responses: []string{`SELECT bogus FROM buildings WHERE "companyId" = 'c1'`}},
		Executor:  &fakeExecutor{err: errors.New(`column "bogus" does not exist`)},
	}

	_, err := service.Answer(context.Background(), Request{
		CompanyID: "c1", UserID: "u1", Question: "q",
	})
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("Answer() error = %v, want ErrExecution", err)
	}
}

func TestAnswerSecondGenerationFailure(t *testing.T) {
	generator := &fakeGenerator{
		responses: []string{`SELECT COUNT(*) FROM buildings WHERE "companyId" = 'c1'`},
		errAfter:  1,
	}
	service := &Service{
		Schema:    &fakeCache{description: "schema"},
		Generator: generator,
		Executor:  &fakeExecutor{result: query.Result{Columns: []string{"count"}, Rows: [][]query.Scalar{{query.Number(1)}}}},
	}

	_, err := service.Answer(context.Background(), Request{
		CompanyID: "c1", UserID: "u1", Question: "q",
	})
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("Answer() error = %v, want ErrGeneration", err)
	}
}

func TestAnswerUsesDegradedSchema(t *testing.T) {
	generator := &fakeGenerator{
		responses: []string{
			`SELECT COUNT(*) FROM buildings WHERE "companyId" = 'c1'`,
			"You have 1 building.",
		},
	}
	service := &Service{
		Schema:    &fakeCache{description: "schema unavailable"},
		Generator: generator,
		Executor:  &fakeExecutor{result: query.Result{Columns: []string{"count"}, Rows: [][]query.Scalar{{query.Number(1)}}}},
	}

	answer, err := service.Answer(context.Background(), Request{
		CompanyID: "c1", UserID: "u1", Question: "q",
	})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != "You have 1 building." {
		t.Fatalf("Answer() = %q", answer)
	}
	if !strings.Contains(generator.prompts[0], "schema unavailable") {
		t.Fatal("degraded schema description should still reach the prompt")
	}
}

func TestAnswerTrimsHistoryToConfiguredLimit(t *testing.T) {
	history := []Turn{
		{Sender: SenderUser, Text: "oldest"},
		{Sender: SenderAssistant, Text: "middle"},
		{Sender: SenderUser, Text: "newest"},
	}
	generator := &fakeGenerator{
		responses: []string{
			`SELECT COUNT(*) FROM buildings WHERE "companyId" = 'c1'`,
			"answer",
		},
	}
	service := &Service{
		Schema:          &fakeCache{description: "schema"},
		Generator:       generator,
		Executor:        &fakeExecutor{result: query.Result{Columns: []string{"count"}, Rows: [][]query.Scalar{{query.Number(1)}}}},
		MaxHistoryTurns: 2,
	}

	if _, err := service.Answer(context.Background(), Request{
		CompanyID: "c1", UserID: "u1", Question: "q", History: history,
	}); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if strings.Contains(generator.prompts[0], "oldest") {
		t.Fatal("prompt should drop turns beyond the history limit")
	}
	if !strings.Contains(generator.prompts[0], "newest") {
		t.Fatal("prompt should keep the most recent turns")
	}
}

type fakeCache struct {
	description string
}

func (f *fakeCache) Get(_ context.Context) string { return f.description }
func (f *fakeCache) Invalidate(_ context.Context) {}

type fakeGenerator struct {
	prompts   []string
	responses []string
	err       error
	errAfter  int
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	call := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if f.errAfter > 0 && call >= f.errAfter {
		return "", errors.New("generator unavailable")
	}
	if call < len(f.responses) {
		return f.responses[call], nil
	}
	return "", nil
}

type fakeExecutor struct {
	queries []string
	result  query.Result
	err     error
}

func (f *fakeExecutor) Execute(_ context.Context, sqlText string) (query.Result, error) {
	f.queries = append(f.queries, sqlText)
	if f.err != nil {
		return query.Result{}, f.err
	}
	return f.result, nil
}
