// Package prompt deterministically compiles the two instruction pairs sent to
// the text-generation collaborator: one that constrains SQL synthesis to the
// tenant's catalog, and one that formats an executed result as prose.
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/firmsight/firmsight/internal/catalog"
	"github.com/firmsight/firmsight/internal/warehouse"
)

// Prompt is one compiled instruction pair. System carries the fixed rules,
// User the per-request data.
type Prompt struct {
	System string
	User   string
}

// RulesVersion names the wording revision of the SQL-generation rules.
func RulesVersion() string {
	return sqlRulesVersion
}

// CompileSQL builds the SQL-generation prompt. It is a pure function of its
// inputs: encoding/json sorts map keys, so identical (question, catalog,
// tenant) yields byte-identical output.
func CompileSQL(question string, cat catalog.Catalog, tenantID string) Prompt {
	// Catalog values are plain strings; encoding cannot fail.
	schema, _ := json.Marshal(cat)
	return Prompt{
		System: fmt.Sprintf(sqlRulesTemplate, tenantID),
		User:   fmt.Sprintf("Schema Info:\n%s\n\nUser Question:\n%s\n", schema, question),
	}
}

// CompileAnswer builds the answer-compilation prompt from the question and the
// classified query result. Result values come straight from driver scans, so
// an unencodable value (a NaN float, say) is reported rather than papered
// over with an empty document.
func CompileAnswer(question string, result warehouse.Result) (Prompt, error) {
	payload, err := json.Marshal(result.Payload())
	if err != nil {
		return Prompt{}, fmt.Errorf("encode result payload: %w", err)
	}
	return Prompt{
		System: answerRules,
		User: fmt.Sprintf("Question:\n%s\n\nResult:\n%s\n\nGenerate the final answer.\n",
			question, payload),
	}, nil
}
