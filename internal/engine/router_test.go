package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeGenerator records the prompt it was given and replies with a canned
// answer.
type fakeGenerator struct {
	name       string
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (Answer, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return Answer{}, f.err
	}
	return Answer{Text: f.reply}, nil
}

func newTestRouter(t *testing.T) (*Router, *fakeGenerator, *fakeGenerator) {
	t.Helper()
	alfred := &fakeGenerator{name: "Alfred", reply: "with context"}
	catwoman := &fakeGenerator{name: "Catwoman", reply: "no context"}

	r := NewRouter()
	r.Register(alfred, true)
	r.Register(catwoman, false)
	if err := r.SetDefault("Alfred"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	return r, alfred, catwoman
}

func Test_Router_ContextEngineReceivesContext(t *testing.T) {
	t.Parallel()
	r, alfred, _ := newTestRouter(t)

	env, err := r.Answer(context.Background(), "what is gravity?", "course context here", "Alfred")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if env.Question != "what is gravity?" {
		t.Errorf("envelope question: got %q", env.Question)
	}
	if env.Answers.Text != "with context" {
		t.Errorf("envelope answer: got %q", env.Answers.Text)
	}
	if !strings.Contains(alfred.lastPrompt, "course context here") {
		t.Errorf("context engine did not receive context: %q", alfred.lastPrompt)
	}
	if !strings.Contains(alfred.lastPrompt, "ONE, TWO, and THREE") {
		t.Errorf("context prompt missing suggestion instructions: %q", alfred.lastPrompt)
	}
}

func Test_Router_BareEngineIgnoresContext(t *testing.T) {
	t.Parallel()
	r, _, catwoman := newTestRouter(t)

	_, err := r.Answer(context.Background(), "what is gravity?", "course context here", "Catwoman")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if strings.Contains(catwoman.lastPrompt, "course context here") {
		t.Errorf("bare engine received context: %q", catwoman.lastPrompt)
	}
	if catwoman.lastPrompt != "Answer the query: what is gravity?" {
		t.Errorf("unexpected bare prompt: %q", catwoman.lastPrompt)
	}
}

func Test_Router_UnknownEngineFallsThroughToDefault(t *testing.T) {
	t.Parallel()
	r, alfred, _ := newTestRouter(t)

	env, err := r.Answer(context.Background(), "q", "ctx", "Joker")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if env.Answers.Text != "with context" {
		t.Errorf("unknown engine did not fall through to default: %q", env.Answers.Text)
	}
	if alfred.lastPrompt == "" {
		t.Error("default engine was not invoked")
	}
}

func Test_Router_EmptyEngineNameUsesDefault(t *testing.T) {
	t.Parallel()
	r, alfred, _ := newTestRouter(t)

	if _, err := r.Answer(context.Background(), "q", "ctx", ""); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if alfred.lastPrompt == "" {
		t.Error("default engine was not invoked for empty name")
	}
}

func Test_Router_GeneratorErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("backend down")
	r := NewRouter()
	r.Register(&fakeGenerator{name: "Robin", err: boom}, false)
	if err := r.SetDefault("Robin"); err != nil {
		t.Fatalf("set default: %v", err)
	}

	if _, err := r.Answer(context.Background(), "q", "", "Robin"); !errors.Is(err, boom) {
		t.Errorf("want backend error to propagate, got %v", err)
	}
}

func Test_Router_SetDefaultUnregisteredFails(t *testing.T) {
	t.Parallel()

	r := NewRouter()
	if err := r.SetDefault("Nobody"); err == nil {
		t.Error("want error for unregistered default, got nil")
	}
}

func Test_Router_NoDefaultNoMatchFails(t *testing.T) {
	t.Parallel()

	r := NewRouter()
	r.Register(&fakeGenerator{name: "Alfred"}, true)

	if _, err := r.Answer(context.Background(), "q", "", "Joker"); err == nil {
		t.Error("want error when no default is configured, got nil")
	}
}

func Test_Router_Resolve(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestRouter(t)

	if got := r.Resolve("Catwoman"); got != "Catwoman" {
		t.Errorf("known engine: want Catwoman, got %q", got)
	}
	if got := r.Resolve("Joker"); got != "Alfred" {
		t.Errorf("unknown engine: want Alfred, got %q", got)
	}
}

func Test_Router_EnginesSorted(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestRouter(t)
	r.Register(&fakeGenerator{name: "Robin"}, false)

	want := []string{"Alfred", "Catwoman", "Robin"}
	got := r.Engines()
	if len(got) != len(want) {
		t.Fatalf("want %d engines, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("engines[%d]: want %q, got %q", i, want[i], got[i])
		}
	}
}
