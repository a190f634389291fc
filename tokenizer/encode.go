// encode.go - Text zu Tokens encodieren
//
// Enthält:
// - Token: ID, Symbol-String und Byte-Offsets
// - EncodeWord: Merge-Schleife über verkettete Liste + Heap (niedrigster Rang zuerst)
// - encodePieces: parallel für große Inputs
//
// Siehe auch: decode.go für Decoding, trainer.go für das Training

package tokenizer

import (
	"container/heap"
	"runtime"
	"sync"
)

// Konstante für parallele Verarbeitung (4KB Schwellwert)
const parallelThreshold = 4096

// Token is one encoded token. Offset is the [start, end) byte range it covers
// in the encoded text.
type Token struct {
	ID     int32
	Value  string
	Offset [2]int
}

type mergeNode struct {
	prev, next int
	start, end int
	token      string
}

type mergePair struct {
	left, right int
	rank        int
	value       string
}

type mergePairHeap []*mergePair

func (h mergePairHeap) Len() int { return len(h) }

func (h mergePairHeap) Less(i, j int) bool {
	return h[i].rank < h[j].rank || (h[i].rank == h[j].rank && h[i].left < h[j].left)
}

func (h mergePairHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergePairHeap) Push(x any) {
	*h = append(*h, x.(*mergePair))
}

func (h *mergePairHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// EncodeWord encodes a single pretokenized word. The word is not segmented
// further; use Tokenizer.Tokenize for running text.
func (v *Vocabulary) EncodeWord(word string) []Token {
	return v.appendWord(nil, word, 0)
}

// appendWord merges the byte symbols of word, always applying the pending
// pair with the lowest rank (leftmost on ties), and appends the result to
// tokens. Offsets are shifted by base.
func (v *Vocabulary) appendWord(tokens []Token, word string, base int) []Token {
	if word == "" {
		return tokens
	}

	nodes := make([]mergeNode, len(word))
	for i := range nodes {
		nodes[i] = mergeNode{
			prev:  i - 1,
			next:  i + 1,
			start: i,
			end:   i + 1,
			token: string(byteToRune[word[i]]),
		}
	}

	pairwise := func(left, right int) *mergePair {
		if left < 0 || right >= len(nodes) {
			return nil
		}
		leftToken, rightToken := nodes[left].token, nodes[right].token
		if leftToken == "" || rightToken == "" {
			return nil
		}

		rank, ok := v.Merges[leftToken+" "+rightToken]
		if !ok {
			return nil
		}
		return &mergePair{
			left:  left,
			right: right,
			rank:  rank,
			value: leftToken + rightToken,
		}
	}

	pairs := mergePairHeap{}
	for i := 0; i < len(nodes)-1; i++ {
		if p := pairwise(i, i+1); p != nil {
			pairs = append(pairs, p)
		}
	}
	heap.Init(&pairs)

	for pairs.Len() > 0 {
		p := heap.Pop(&pairs).(*mergePair)
		left, right := nodes[p.left], nodes[p.right]
		if left.token == "" || right.token == "" {
			continue
		}
		if left.next != p.right || right.prev != p.left {
			continue
		}
		if left.token+right.token != p.value {
			continue
		}

		nodes[p.left].token = p.value
		nodes[p.left].end = right.end
		nodes[p.left].next = right.next
		nodes[p.right].token = ""
		if right.next < len(nodes) {
			nodes[right.next].prev = p.left
		}

		if np := pairwise(nodes[p.left].prev, p.left); np != nil {
			heap.Push(&pairs, np)
		}
		if np := pairwise(p.left, nodes[p.left].next); np != nil {
			heap.Push(&pairs, np)
		}
	}

	for _, node := range nodes {
		if node.token == "" {
			continue
		}
		offset := [2]int{base + node.start, base + node.end}

		if id, ok := v.Reverse[node.token]; ok {
			tokens = append(tokens, Token{ID: id, Value: node.token, Offset: offset})
			continue
		}
		if v.UNK >= 0 {
			tokens = append(tokens, Token{ID: v.UNK, Value: node.token, Offset: offset})
			continue
		}
		tokens = v.appendByteFallback(tokens, word[node.start:node.end], base+node.start)
	}

	return tokens
}

// appendByteFallback emits the base symbols of raw. Base symbol ids equal
// their byte value, so this never fails.
func (v *Vocabulary) appendByteFallback(tokens []Token, raw string, base int) []Token {
	for i := 0; i < len(raw); i++ {
		tokens = append(tokens, Token{
			ID:     int32(raw[i]),
			Value:  string(byteToRune[raw[i]]),
			Offset: [2]int{base + i, base + i + 1},
		})
	}
	return tokens
}

// piece is a pretokenized word and its byte offset in the prepared text.
type piece struct {
	Piece
	offset int
}

func (v *Vocabulary) encodePiece(tokens []Token, p piece) []Token {
	if p.Special {
		id, ok := v.special[p.Text]
		if !ok {
			id = v.UNK
		}
		return append(tokens, Token{ID: id, Value: p.Text, Offset: [2]int{p.offset, p.offset + len(p.Text)}})
	}
	return v.appendWord(tokens, p.Text, p.offset)
}

// encodePieces encodes pieces in order. Parallelizes for large inputs (>4KB).
func (v *Vocabulary) encodePieces(pieces []piece, size int) []Token {
	if size < parallelThreshold || len(pieces) < 2 {
		var tokens []Token
		for _, p := range pieces {
			tokens = v.encodePiece(tokens, p)
		}
		return tokens
	}

	numWorkers := min(runtime.GOMAXPROCS(0), len(pieces))
	piecesPer := (len(pieces) + numWorkers - 1) / numWorkers
	results := make([][]Token, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * piecesPer
		end := min(start+piecesPer, len(pieces))
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(i int, chunk []piece) {
			defer wg.Done()
			var r []Token
			for _, p := range chunk {
				r = v.encodePiece(r, p)
			}
			results[i] = r
		}(i, pieces[start:end])
	}
	wg.Wait()

	var n int
	for _, r := range results {
		n += len(r)
	}
	tokens := make([]Token, 0, n)
	for _, r := range results {
		tokens = append(tokens, r...)
	}
	return tokens
}
