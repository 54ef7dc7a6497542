// Package pipeline runs the per-request answer sequence: resolve the tenant's
// schema, synthesize SQL through the generation collaborator, execute it, and
// compile the result into prose. Each request is strictly sequential and the
// service holds no mutable state between requests.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firmsight/firmsight/internal/config"
	"github.com/firmsight/firmsight/internal/genai"
	"github.com/firmsight/firmsight/internal/observability"
	"github.com/firmsight/firmsight/internal/prompt"
	"github.com/firmsight/firmsight/internal/warehouse"
)

type Service struct {
	DB        *sql.DB
	Generator genai.Generator
	Resolver  warehouse.Resolver
	Executor  warehouse.Executor
	Messages  config.AnswerConfig
	Logger    *slog.Logger
}

// Answer runs the full pipeline for one question. It returns a user-facing
// answer string in every non-error case, including the fixed messages for
// unanswerable questions and empty results. Any failure in schema resolution,
// generation, or execution fails the whole request; nothing is retried.
func (s *Service) Answer(ctx context.Context, question, tenantID string) (string, error) {
	observability.ObserveAnswerRequest()

	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire warehouse connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	stageStart := time.Now()
	cat, err := s.Resolver.Resolve(ctx, conn, tenantID)
	if err != nil {
		return "", fmt.Errorf("resolve schema: %w", err)
	}
	observability.ObservePipelineStage("resolve_schema", time.Since(stageStart))
	observability.ObserveCatalogViews(len(cat))
	if s.Logger != nil {
		s.Logger.DebugContext(ctx, "resolved schema",
			slog.String("tenant", tenantID),
			slog.Any("views", cat.Views()),
		)
	}

	sqlPrompt := prompt.CompileSQL(question, cat, tenantID)

	stageStart = time.Now()
	raw, err := s.Generator.Generate(ctx, genai.Request{System: sqlPrompt.System, User: sqlPrompt.User})
	if err != nil {
		return "", fmt.Errorf("synthesize sql: %w", err)
	}
	observability.ObservePipelineStage("synthesize_sql", time.Since(stageStart))
	observability.ObserveGeneratorCall("sql")

	sqlText := SanitizeSQL(raw)
	if sqlText == "" {
		observability.ObserveUnanswerable()
		return s.Messages.UnanswerableMessage, nil
	}
	if s.Logger != nil {
		s.Logger.DebugContext(ctx, "synthesized sql",
			slog.String("tenant", tenantID),
			slog.String("sql", sqlText),
		)
	}

	stageStart = time.Now()
	result, err := s.Executor.Execute(ctx, conn, sqlText)
	if err != nil {
		return "", fmt.Errorf("execute query: %w", err)
	}
	observability.ObservePipelineStage("execute_query", time.Since(stageStart))

	if result.Kind == warehouse.ResultEmpty {
		observability.ObserveNoData()
		return s.Messages.NoDataMessage, nil
	}

	answerPrompt, err := prompt.CompileAnswer(question, result)
	if err != nil {
		return "", fmt.Errorf("compile answer prompt: %w", err)
	}

	stageStart = time.Now()
	answer, err := s.Generator.Generate(ctx, genai.Request{System: answerPrompt.System, User: answerPrompt.User})
	if err != nil {
		return "", fmt.Errorf("compile answer: %w", err)
	}
	observability.ObservePipelineStage("compile_answer", time.Since(stageStart))
	observability.ObserveGeneratorCall("answer")

	return strings.TrimSpace(answer), nil
}

var fenceReplacer = strings.NewReplacer("```sql", "", "```", "", "`", "")

// SanitizeSQL strips code-fence and inline-code markup the model may wrap the
// statement in, then trims whitespace. An empty return value is the model's
// first-class "cannot answer" signal, not an error.
func SanitizeSQL(raw string) string {
	return strings.TrimSpace(fenceReplacer.Replace(raw))
}
