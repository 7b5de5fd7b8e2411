package models

import "strconv"

// Passage is one indexed segment of a corpus document.
type Passage struct {
	ID             string `json:"id"`
	Content        string `json:"content"`
	SourceFilename string `json:"source_filename"`
	ChunkID        int    `json:"chunk_id"`
}

// Metadata returns the passage attributes stored next to its embedding.
func (p Passage) Metadata() map[string]string {
	return map[string]string{
		"source":   p.SourceFilename,
		"chunk_id": strconv.Itoa(p.ChunkID),
	}
}
