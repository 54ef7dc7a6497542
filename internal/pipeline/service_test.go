package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"regexp"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/firmsight/firmsight/internal/config"
	"github.com/firmsight/firmsight/internal/genai"
)

var testMessages = config.AnswerConfig{
	UnanswerableMessage: "I couldn’t find enough data to answer that question.",
	NoDataMessage:       "No data was found for this question.",
}

func TestAnswerEndToEndScalar(t *testing.T) {
	db, mock := newSQLMock(t)
	expectSchemaResolution(mock, "acme")

	generatedSQL := "```sql\n" +
		"SELECT SUM(a.rounded_quantity_in_hours) AS total_hours " +
		"FROM acme.vw_Activities a " +
		"WHERE a.Type = 'TimeEntry' AND a.non_billable = 'false' " +
		"AND a.Date BETWEEN DATEFROMPARTS(YEAR(GETDATE()), 1, 1) AND CAST(GETDATE() AS DATE)\n```"

	mock.ExpectQuery(regexp.QuoteMeta("SELECT SUM(a.rounded_quantity_in_hours)")).
		WillReturnRows(sqlmock.NewRows([]string{"total_hours"}).AddRow(1287.5))

	gen := &fakeGenerator{responses: []string{
		generatedSQL,
		"The firm logged 1287.5 billable hours this year.",
	}}
	service := &Service{DB: db, Generator: gen, Messages: testMessages}

	answer, err := service.Answer(context.Background(), "total billable hours this year for Acme", "acme")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != "The firm logged 1287.5 billable hours this year." {
		t.Fatalf("Answer() = %q", answer)
	}
	if len(gen.requests) != 2 {
		t.Fatalf("generator calls = %d, want 2", len(gen.requests))
	}

	sqlPass := gen.requests[0]
	if !strings.Contains(sqlPass.System, "Use ONLY the 'acme' schema.") {
		t.Fatal("sql pass missing tenant scoping rule")
	}
	if !strings.Contains(sqlPass.User, "total billable hours this year for Acme") {
		t.Fatal("sql pass missing question")
	}

	answerPass := gen.requests[1]
	if !strings.Contains(answerPass.User, `"type":"scalar"`) {
		t.Fatalf("answer pass missing scalar result: %s", answerPass.User)
	}
	if strings.Contains(answerPass.User, "SELECT SUM") {
		t.Fatal("answer pass must not carry raw SQL")
	}
	assertSQLMock(t, mock)
}

func TestAnswerEmptySQLShortCircuits(t *testing.T) {
	db, mock := newSQLMock(t)
	expectSchemaResolution(mock, "acme")

	gen := &fakeGenerator{responses: []string{""}}
	service := &Service{DB: db, Generator: gen, Messages: testMessages}

	answer, err := service.Answer(context.Background(), "what is the meaning of life?", "acme")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != testMessages.UnanswerableMessage {
		t.Fatalf("Answer() = %q", answer)
	}
	if len(gen.requests) != 1 {
		t.Fatalf("generator calls = %d, want 1 (no answer pass)", len(gen.requests))
	}
	// No executor expectation was registered; unmet expectations would fail here
	// if the pipeline had run a query.
	assertSQLMock(t, mock)
}

func TestAnswerWhitespaceFencedSQLCountsAsEmpty(t *testing.T) {
	db, mock := newSQLMock(t)
	expectSchemaResolution(mock, "acme")

	gen := &fakeGenerator{responses: []string{"```sql\n   \n```"}}
	service := &Service{DB: db, Generator: gen, Messages: testMessages}

	answer, err := service.Answer(context.Background(), "?", "acme")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != testMessages.UnanswerableMessage {
		t.Fatalf("Answer() = %q", answer)
	}
	assertSQLMock(t, mock)
}

func TestAnswerEmptyResultShortCircuits(t *testing.T) {
	db, mock := newSQLMock(t)
	expectSchemaResolution(mock, "acme")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.Total_Amount")).
		WillReturnRows(sqlmock.NewRows([]string{"Total_Amount"}))

	gen := &fakeGenerator{responses: []string{"SELECT a.Total_Amount FROM acme.vw_Activities a WHERE a.Type = 'TimeEntry'"}}
	service := &Service{DB: db, Generator: gen, Messages: testMessages}

	answer, err := service.Answer(context.Background(), "revenue today", "acme")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != testMessages.NoDataMessage {
		t.Fatalf("Answer() = %q", answer)
	}
	if len(gen.requests) != 1 {
		t.Fatalf("generator calls = %d, want 1 (no answer pass on empty result)", len(gen.requests))
	}
	assertSQLMock(t, mock)
}

func TestAnswerPropagatesGeneratorFailure(t *testing.T) {
	db, mock := newSQLMock(t)
	expectSchemaResolution(mock, "acme")

	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	service := &Service{DB: db, Generator: gen, Messages: testMessages}

	if _, err := service.Answer(context.Background(), "anything", "acme"); err == nil {
		t.Fatal("expected generator failure to propagate")
	}
}

func TestAnswerPropagatesExecutionFailure(t *testing.T) {
	db, mock := newSQLMock(t)
	expectSchemaResolution(mock, "acme")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT bogus")).
		WillReturnError(errors.New("invalid object name"))

	gen := &fakeGenerator{responses: []string{"SELECT bogus"}}
	service := &Service{DB: db, Generator: gen, Messages: testMessages}

	if _, err := service.Answer(context.Background(), "anything", "acme"); err == nil {
		t.Fatal("expected execution failure to propagate")
	}
	if len(gen.requests) != 1 {
		t.Fatalf("generator calls = %d, want 1", len(gen.requests))
	}
}

func TestAnswerPropagatesUnencodableResult(t *testing.T) {
	db, mock := newSQLMock(t)
	expectSchemaResolution(mock, "acme")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(a.ratio)")).
		WillReturnRows(sqlmock.NewRows([]string{"ratio"}).AddRow(math.NaN()))

	gen := &fakeGenerator{responses: []string{"SELECT AVG(a.ratio) FROM acme.vw_Activities a"}}
	service := &Service{DB: db, Generator: gen, Messages: testMessages}

	_, err := service.Answer(context.Background(), "average utilization ratio", "acme")
	if err == nil {
		t.Fatal("expected unencodable result to fail the request")
	}
	if !strings.Contains(err.Error(), "compile answer prompt") {
		t.Fatalf("err = %v", err)
	}
	if len(gen.requests) != 1 {
		t.Fatalf("generator calls = %d, want 1 (no answer pass)", len(gen.requests))
	}
}

func TestSanitizeSQL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"fenced", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"bare fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"inline code", "`SELECT 1`", "SELECT 1"},
		{"plain", "  SELECT 1  ", "SELECT 1"},
		{"empty", "", ""},
		{"fence only", "```sql\n```", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSQL(tc.in); got != tc.want {
				t.Fatalf("SanitizeSQL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func expectSchemaResolution(mock sqlmock.Sqlmock, tenant string) {
	mock.ExpectQuery(regexp.QuoteMeta(`
SELECT TABLE_SCHEMA, TABLE_NAME
FROM INFORMATION_SCHEMA.VIEWS`)).
		WithArgs(sql.Named("tenant", tenant)).
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_SCHEMA", "TABLE_NAME"}).
			AddRow(tenant, "vw_Activities"))

	mock.ExpectQuery(regexp.QuoteMeta(`
SELECT COLUMN_NAME, DATA_TYPE
FROM INFORMATION_SCHEMA.COLUMNS`)).
		WithArgs(sql.Named("schema", tenant), sql.Named("view", "vw_Activities")).
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE"}).
			AddRow("Type", "varchar").
			AddRow("non_billable", "bit").
			AddRow("rounded_quantity_in_hours", "decimal").
			AddRow("Date", "date"))
}

type fakeGenerator struct {
	requests  []genai.Request
	responses []string
	err       error
}

func (f *fakeGenerator) Generate(_ context.Context, req genai.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	index := len(f.requests) - 1
	if index >= len(f.responses) {
		return "", errors.New("no scripted response")
	}
	return f.responses[index], nil
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}
