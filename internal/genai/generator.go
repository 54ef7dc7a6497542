// Package genai wraps the text-generation collaborator. The pipeline only
// sees Generator; the Azure OpenAI client is one implementation of it.
package genai

import "context"

// Request is one generation call: a fixed system instruction plus the
// per-request user instruction.
type Request struct {
	System string
	User   string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
