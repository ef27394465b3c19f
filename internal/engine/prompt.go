package engine

import "fmt"

// ContextPrompt renders the retrieval-augmented prompt: the question is
// answered against the supplied course context, and the engine is asked for
// three labeled follow-up suggestions the frontend can render as buttons.
func ContextPrompt(question, contextText string) string {
	return fmt.Sprintf(
		"Answer this question based on the context provided. "+
			"After the answer, suggest three follow-up questions labeled ONE, TWO, and THREE.\n\n"+
			"Context: %s\n\nQuestion: %s",
		contextText, question)
}

// BarePrompt renders the context-free prompt used by engines that answer from
// the model's own knowledge.
func BarePrompt(question string) string {
	return "Answer the query: " + question
}
