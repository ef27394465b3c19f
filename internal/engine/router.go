package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// route pairs a generator with its prompting strategy.
type route struct {
	// gen answers rendered prompts.
	gen Generator
	// withContext selects the retrieval-augmented prompt over the bare one.
	withContext bool
}

// Router dispatches questions to registered engines by name. Unknown or empty
// engine names fall through to the default engine, so clients never need to
// know the full engine roster.
type Router struct {
	// mu guards routes and defaultName; registration happens at startup but
	// Answer is called concurrently.
	mu sync.RWMutex

	// routes maps engine name to its route.
	routes map[string]route

	// defaultName is the engine used when the requested name is unknown.
	defaultName string
}

// NewRouter constructs an empty Router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]route)}
}

// Register adds an engine under its generator's name. withContext selects
// whether the engine receives retrieved course context in its prompt.
// Registering the same name twice replaces the earlier engine.
func (r *Router) Register(gen Generator, withContext bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[gen.Name()] = route{gen: gen, withContext: withContext}
}

// SetDefault selects the fallback engine for unknown or empty engine names.
// The engine must already be registered.
func (r *Router) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[name]; !ok {
		return fmt.Errorf("engine: cannot default to unregistered engine %q", name)
	}
	r.defaultName = name
	return nil
}

// Answer routes the question to the named engine and returns the normalized
// envelope. contextText is the retrieved course context; engines registered
// without context ignore it. An unknown or empty engineName falls through to
// the default engine.
func (r *Router) Answer(ctx context.Context, question, contextText, engineName string) (Envelope, error) {
	r.mu.RLock()
	rt, ok := r.routes[engineName]
	if !ok {
		rt, ok = r.routes[r.defaultName]
	}
	r.mu.RUnlock()
	if !ok {
		return Envelope{}, fmt.Errorf("engine: no engine registered for %q and no default configured", engineName)
	}

	prompt := BarePrompt(question)
	if rt.withContext {
		prompt = ContextPrompt(question, contextText)
	}

	answer, err := rt.gen.Generate(ctx, prompt)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{Answers: answer, Question: question}, nil
}

// Resolve returns the name of the engine that would handle the given name,
// accounting for default fallback. Used for history attribution.
func (r *Router) Resolve(engineName string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.routes[engineName]; ok {
		return engineName
	}
	return r.defaultName
}

// Engines returns all registered engine names sorted lexicographically.
func (r *Router) Engines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
