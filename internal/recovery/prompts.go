package recovery

import "fmt"

const rhymePromptTemplate = `Give me ONE common, simple English word that rhymes with %q.
Prefer a one-syllable word that appears in a standard pronouncing dictionary.

Examples:
- night -> light
- blue -> true
- heart -> start
- fire -> wire

Reply with the single word only. No punctuation, no explanations.`

// Prompt returns the request sent to the completion model for word.
func Prompt(word string) string {
	return fmt.Sprintf(rhymePromptTemplate, word)
}
