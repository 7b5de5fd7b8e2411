// Package chunker splits text into fixed word-count chunks.
package chunker

import (
	"errors"
	"strings"
)

var ErrInvalidSize = errors.New("chunk size must be positive")

// Split breaks text into whitespace-delimited words and groups them into
// chunks of size words, joined by single spaces. Every chunk holds exactly
// size words except the last, which holds the remainder. Text with no words
// yields no chunks.
func Split(text string, size int) ([]string, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	chunks := make([]string, 0, Count(len(words), size))
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks, nil
}

// Count returns the number of chunks Split produces for wordCount words.
func Count(wordCount, size int) int {
	if size <= 0 || wordCount <= 0 {
		return 0
	}
	return (wordCount + size - 1) / size
}
