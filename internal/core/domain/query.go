package domain

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 5

// QueryOptions configures retrieval and answering.
type QueryOptions struct {
	// TopK is the number of chunks to retrieve. Zero uses DefaultTopK.
	TopK int

	// Filter restricts retrieval to chunks whose metadata matches every key.
	Filter Metadata
}

// Answer is an LLM response grounded on retrieved chunks.
type Answer struct {
	Question string
	Text     string
	Sources  []RetrievedChunk
}

// CodeBlock is a fenced code block found in markdown text.
type CodeBlock struct {
	// Language is the info string after the opening fence, or "".
	Language string
	Code     string
}
