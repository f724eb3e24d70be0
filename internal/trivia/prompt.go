package trivia

import "strings"

// noneYet stands in for the exclusion list when nothing has been asked.
const noneYet = "(none yet)"

// BuildPrompt renders the request sent to the oracle. Previously issued
// questions for the same location and category are listed so the model
// avoids repeating them.
func BuildPrompt(location, category string, asked []string) string {
	var sb strings.Builder
	sb.WriteString("Create one fun, factual multiple-choice trivia question about ")
	sb.WriteString(location)
	sb.WriteString(",\nspecifically in the category: ")
	sb.WriteString(category)
	sb.WriteString(".\n\nDo NOT repeat any of the following questions:\n")

	if len(asked) == 0 {
		sb.WriteString(noneYet)
	} else {
		for i, q := range asked {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString("- ")
			sb.WriteString(q)
		}
	}

	sb.WriteString(`

Respond ONLY in JSON with keys:
"question": string,
"choices": array of 4 strings,
"answerIndex": number (0-3).
`)
	return sb.String()
}
