package rewriter

import "strings"

const rewriteInstructions = "Improve clarity, professionalism, and politeness while maintaining the original message.\n" +
	"Make sure the rewritten version is well-structured and effectively communicates the message.\n"

func BuildPrompt(email string, tone Tone) string {
	b := strings.Builder{}
	b.WriteString("Rewrite the following email in a ")
	b.WriteString(strings.ToLower(string(tone)))
	b.WriteString(" tone.\n")
	b.WriteString(rewriteInstructions)
	b.WriteString("\nOriginal email: ")
	b.WriteString(email)
	return b.String()
}
