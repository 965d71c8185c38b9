package model

// PromptInsight summarises the answers given for one prompt
type PromptInsight struct {
	Index         int
	Prompt        string
	TotalEntries  int
	UniqueEntries int
	NameCounts    map[string]int
}
