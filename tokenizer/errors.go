package tokenizer

import "errors"

var (
	// ErrInvalidVocabSize is logged, not returned: a target below the alphabet
	// size trains zero merges.
	ErrInvalidVocabSize = errors.New("target vocabulary size is smaller than the byte alphabet")

	// ErrCorruptArtifact is returned by Load when vocab.json or merges.txt
	// cannot describe a valid merge table.
	ErrCorruptArtifact = errors.New("corrupt tokenizer artifact")
)
