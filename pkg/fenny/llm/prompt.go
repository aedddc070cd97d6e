// prompt.go renders conversation history into the Llama-2 instruction
// format the finance-chat model was tuned on.
package llm

import (
	"strings"

	"github.com/fenny-ai/fenny/pkg/fenny/session"
)

// SystemPersona is the fixed system prompt for the assistant.
const SystemPersona = "You are a financial expert assistant named Fenny. " +
	"You provide accurate, helpful information about finance, investing, and financial documents. " +
	"Be concise and professional."

// BuildPrompt formats messages into the template expected by finance-chat:
//
//	[INST] <<SYS>>
//	{system}
//	<</SYS>>
//
//	{user} [/INST]
//	{assistant}
//	<s>[INST] {user} [/INST]
func BuildPrompt(history []session.Message) string {
	var b strings.Builder
	b.WriteString("[INST] <<SYS>>\n")
	b.WriteString(SystemPersona)
	b.WriteString("\n<</SYS>>\n\n")

	for i, msg := range history {
		switch msg.Role {
		case session.RoleUser:
			b.WriteString(msg.Text)
			b.WriteString(" [/INST]\n")
		case session.RoleAssistant:
			b.WriteString(msg.Text)
			b.WriteString("\n")
			if i < len(history)-1 {
				b.WriteString("<s>[INST] ")
			}
		}
	}

	return b.String()
}
