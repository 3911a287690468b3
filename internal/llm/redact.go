package llm

import "regexp"

var (
	openAIKeyPattern = regexp.MustCompile(`sk-[A-Za-z0-9]{48}`)
	// Gemini keys travel as a query parameter and show up in *url.Error text
	urlKeyPattern = regexp.MustCompile(`([?&]key=)[^&\s"']+`)
)

// Redact strips credential material from text before it is logged or returned
func Redact(s string) string {
	s = openAIKeyPattern.ReplaceAllString(s, "sk-***")
	return urlKeyPattern.ReplaceAllString(s, "${1}***")
}
