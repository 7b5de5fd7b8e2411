package models

const (
	// FileNotFound is returned in place of a summary when the input path does not exist.
	FileNotFound = "File not found."

	SummarySeparator = "\n"
	ContextSeparator = "\n"

	// DefaultRefineInstructions are used by `generate --refine`.
	DefaultRefineInstructions = "Improve style and clarity."
)

// Prompt templates. Placeholders use the f-string form {name}.
var (
	ChainOfThoughtTemplate = `Break down the following query into a clear chain-of-thought:
Query: {query}

Chain-of-Thought:
`

	FinalAnswerTemplate = `You have the following chain-of-thought:
{reasoning}

Now, provide a concise final answer to the original query:
Query: {query}

Final Answer:
`

	ChunkSummaryTemplate = `Summarize the following text chunk in 1-2 sentences:
---
{chunk_text}
---
Short Summary:
`

	CombineSummariesTemplate = `Below are partial summaries from different chunks of a larger text:

{partial_summaries}

Combine these partial summaries into one coherent final summary:
`

	RefinementTemplate = `You have the following text:
---
{original_text}
---
And these instructions for improvement:
{instructions}

Now provide a refined version of the text that follows these instructions:
Refined Text:
`

	QuestionAnswerTemplate = "Answer the question:\nQuestion: {question}\nAnswer:"

	ContextAnswerTemplate = "You have the following context:\n\n{context}\n\nUse this context to answer the question:\n{question}\nAnswer:"
)
