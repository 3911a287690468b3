package orchestrator

// Prompt fragments injected into conversations

const contextInstruction = `You are in an ongoing conversation. Keep the full conversation history in mind:
refer back to earlier messages when relevant and stay consistent with what was already said.`

const reasoningInstruction = `

Before giving your final answer, think through the problem step by step inside <thinking>...</thinking> tags.
Write your final answer after the closing </thinking> tag.`

const enhancedInstruction = `

After your answer, add these sections exactly as written:
**Assumptions:**
- each assumption you made, one per bullet
**Confidence:** high, medium or low
**Follow-ups:**
- useful follow-up questions, one per bullet
**Report Card:**
- one line per category (Correctness, Completeness, Evidence, Safety, Clarity, Actionability), written as "✅ Category" when satisfied or "⚠️ Category" when not`

// searchQuestionPrefix separates injected search context from the user's message
const searchQuestionPrefix = "\n\nUser question: "

// rewriteSuffixes are appended to the latest user message per task type
var rewriteSuffixes = map[TaskType]string{
	TaskCode:     "(include working code examples with brief explanations)",
	TaskResearch: "(provide current information with sources and dates)",
	TaskWrite:    "(focus on clear structure and an engaging style)",
	TaskMath:     "(show step-by-step calculations)",
	TaskCritique: "(give balanced strengths, weaknesses and concrete improvements)",
}
