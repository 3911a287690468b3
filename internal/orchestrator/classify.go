package orchestrator

import (
	"regexp"
	"strings"
	"unicode"
)

// TaskType is the coarse intent of a user message
type TaskType string

const (
	TaskCode     TaskType = "code"
	TaskResearch TaskType = "research"
	TaskWrite    TaskType = "write"
	TaskMath     TaskType = "math"
	TaskCritique TaskType = "critique"
	TaskDirect   TaskType = "direct"
)

type taskRule struct {
	task    TaskType
	pattern *regexp.Regexp
}

func keywords(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)`)
}

// taskRules are checked in order; the first match wins
var taskRules = []taskRule{
	{TaskCode, keywords(
		"code", "function", "bug", "debug", "program", "script", "implement", "compile",
		"refactor", "algorithm", "api", "regex", "sql", "python", "javascript", "typescript",
		"golang", "java", "rust", "stack trace", "exception",
	)},
	{TaskResearch, keywords(
		"research", "latest", "news", "current", "recent", "today", "study", "studies",
		"sources", "statistics", "trend", "what happened", "find information",
	)},
	{TaskWrite, keywords(
		"write", "essay", "story", "poem", "draft", "email", "letter", "blog", "article",
		"rewrite", "paraphrase", "compose",
	)},
	{TaskMath, regexp.MustCompile(`(?i)\b(?:calculate|solve|equation|math|integral|derivative|probability|percent|sum of|prove)|\d+\s*[+*/^]\s*\d+`)},
	{TaskCritique, keywords(
		"critique", "review", "feedback", "evaluate", "assess", "pros and cons", "improve",
		"weakness",
	)},
}

// Classify maps a user message to a task type
func Classify(message string) TaskType {
	for _, rule := range taskRules {
		if rule.pattern.MatchString(message) {
			return rule.task
		}
	}
	return TaskDirect
}

// Rewrite appends the task-specific instruction suffix to message
func Rewrite(message string, task TaskType) string {
	suffix, ok := rewriteSuffixes[task]
	if !ok {
		return message
	}
	return message + " " + suffix
}

const maxSearchQueryLen = 50

// SearchQuery derives a search-engine query from a chat message: punctuation
// stripped, whitespace collapsed, first 50 characters.
func SearchQuery(message string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, message)

	runes := []rune(strings.Join(strings.Fields(cleaned), " "))
	if len(runes) > maxSearchQueryLen {
		runes = runes[:maxSearchQueryLen]
	}
	return strings.TrimSpace(string(runes))
}

// shouldSearch is the web search gate
func shouldSearch(requested bool, task TaskType, message string) bool {
	if !requested {
		return false
	}
	return task == TaskResearch || strings.Contains(strings.ToLower(message), "latest")
}
