package llm

import "context"

// Provider generates a grounded answer from the user query and the retrieved
// review excerpts. The system instruction is fixed by the implementation.
type Provider interface {
	Generate(ctx context.Context, query string, grounding []string) (string, error)
}
