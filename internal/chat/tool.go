package chat

import (
	"context"
	"encoding/json"

	"github.com/user/prakharai/pkg/genai"
)

// Tool defines the interface for a capability the model can invoke during a
// turn. Execute returns a short human-readable note that is appended to the
// assistant's visible text; tools side-effect, they never feed results back
// into the model.
type Tool interface {
	Name() string
	Description() string
	Parameters() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds registered tools and provides lookup.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Declarations converts registered tools to the generation client format,
// in registration order.
func (r *Registry) Declarations() []genai.FunctionDecl {
	out := make([]genai.FunctionDecl, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, genai.FunctionDecl{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return out
}
