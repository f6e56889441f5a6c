package genai

import "context"

// Generator is the generative-text collaborator: one prompt in, raw model
// text out. Empty output is a normal return, not an error; extraction and
// validation of that text belong to the chat pipeline.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
