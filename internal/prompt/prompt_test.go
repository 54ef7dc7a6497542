package prompt

import (
	"math"
	"strings"
	"testing"

	"github.com/firmsight/firmsight/internal/catalog"
	"github.com/firmsight/firmsight/internal/warehouse"
)

func sampleCatalog() catalog.Catalog {
	return catalog.Catalog{
		"acme.vw_Activities": {
			{Name: "Type", Type: "varchar"},
			{Name: "non_billable", Type: "bit"},
			{Name: "rounded_quantity_in_hours", Type: "decimal"},
			{Name: "Date", Type: "date"},
		},
		"acme.vw_Users": {
			{Name: "User_Id", Type: "varchar"},
			{Name: "job_title", Type: "varchar"},
		},
	}
}

func TestCompileSQLIsIdempotent(t *testing.T) {
	question := "total billable hours this year"
	first := CompileSQL(question, sampleCatalog(), "acme")
	for i := 0; i < 10; i++ {
		again := CompileSQL(question, sampleCatalog(), "acme")
		if again != first {
			t.Fatalf("compilation not byte-identical on call %d", i)
		}
	}
}

func TestCompileSQLEmbedsTenantSchema(t *testing.T) {
	p := CompileSQL("how many open matters?", sampleCatalog(), "acme")

	if !strings.Contains(p.System, "Use ONLY the 'acme' schema.") {
		t.Fatal("system block missing tenant scoping rule")
	}
	if !strings.Contains(p.System, "acme.vw_Activities a") {
		t.Fatal("system block missing tenant-qualified alias convention")
	}
	if strings.Contains(p.System, "%[1]s") || strings.Contains(p.System, "%!") {
		t.Fatalf("unsubstituted placeholder in system block")
	}
}

func TestCompileSQLCarriesStandingRules(t *testing.T) {
	p := CompileSQL("anything", sampleCatalog(), "acme")

	for _, rule := range []string{
		"return an EMPTY string",
		"Column names are CASE-SENSITIVE",
		"a.Type = 'TimeEntry'",
		"a.non_billable = 'false'",
		"DATEFROMPARTS(YEAR(GETDATE()), 1, 1)",
		"TRY_CONVERT()",
		"NEVER use SELECT *",
		"NEVER use LIMIT or OFFSET (use TOP)",
		"All non-aggregated columns MUST appear in GROUP BY",
	} {
		if !strings.Contains(p.System, rule) {
			t.Fatalf("system block missing rule fragment %q", rule)
		}
	}
}

func TestCompileSQLSerializesCatalogAndQuestion(t *testing.T) {
	p := CompileSQL("total billable hours this year", sampleCatalog(), "acme")

	if !strings.Contains(p.User, `"acme.vw_Activities"`) {
		t.Fatal("user block missing catalog entry")
	}
	if !strings.Contains(p.User, `{"name":"rounded_quantity_in_hours","type":"decimal"}`) {
		t.Fatalf("user block missing column serialization: %s", p.User)
	}
	if !strings.Contains(p.User, "User Question:\ntotal billable hours this year") {
		t.Fatal("user block missing literal question")
	}
	// Catalog key order is sorted, so vw_Activities serializes before vw_Users.
	if strings.Index(p.User, "vw_Activities") > strings.Index(p.User, "vw_Users") {
		t.Fatal("catalog serialization not in sorted view order")
	}
}

func TestCompileAnswerScalar(t *testing.T) {
	result := warehouse.Result{Kind: warehouse.ResultScalar, Columns: []string{"total_hours"}, Scalar: 1287.5}
	p, err := CompileAnswer("total billable hours this year", result)
	if err != nil {
		t.Fatalf("CompileAnswer() error = %v", err)
	}

	if !strings.Contains(p.System, "Do NOT mention SQL, queries, or databases") {
		t.Fatal("answer rules missing no-mechanism rule")
	}
	if !strings.Contains(p.System, "Separate bullets with two spaces") {
		t.Fatal("answer rules missing bullet delimiter rule")
	}
	if !strings.Contains(p.User, `"type":"scalar"`) {
		t.Fatalf("user block missing scalar tag: %s", p.User)
	}
	if !strings.Contains(p.User, "1287.5") {
		t.Fatal("user block missing scalar value")
	}
}

func TestCompileAnswerTabular(t *testing.T) {
	result := warehouse.Result{
		Kind:    warehouse.ResultTable,
		Columns: []string{"job_title", "total_hours"},
		Rows: []map[string]any{
			{"job_title": "Partner", "total_hours": 820.25},
		},
	}
	p, err := CompileAnswer("billable hours by job title", result)
	if err != nil {
		t.Fatalf("CompileAnswer() error = %v", err)
	}

	if !strings.Contains(p.User, `"type":"table"`) {
		t.Fatalf("user block missing table tag: %s", p.User)
	}
	if !strings.Contains(p.User, `"columns":["job_title","total_hours"]`) {
		t.Fatalf("user block missing ordered columns: %s", p.User)
	}
	if !strings.Contains(p.User, `"Partner"`) {
		t.Fatal("user block missing row data")
	}
}

func TestCompileAnswerRejectsUnencodableValues(t *testing.T) {
	result := warehouse.Result{Kind: warehouse.ResultScalar, Columns: []string{"ratio"}, Scalar: math.NaN()}
	if _, err := CompileAnswer("utilization ratio", result); err == nil {
		t.Fatal("expected encoding error for NaN scalar")
	}
}

func TestRulesVersionNamesRevision(t *testing.T) {
	if v := RulesVersion(); v == "" || strings.ContainsAny(v, " \n") {
		t.Fatalf("RulesVersion() = %q", v)
	}
}
