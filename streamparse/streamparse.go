// Package streamparse incrementally extracts attack pairs from a streamed
// model reply. The reply is expected to contain one JSON array of two-element
// integer arrays, possibly wrapped in prose, and may arrive cut at arbitrary
// byte boundaries.
package streamparse

import (
	"bytes"
	"encoding/json"
)

// Pair orders one attacker against one target.
type Pair struct {
	Attacker int
	Target   int
}

// idleCap bounds the buffer while scanning prose for the opening bracket.
const idleCap = 4096

// Parser is a single-use incremental parser. Create a fresh one per reply.
type Parser struct {
	buf        []byte
	started    bool
	depth      int
	scanIdx    int
	innerStart int
}

func New() *Parser {
	return &Parser{innerStart: -1}
}

// Feed appends a chunk and returns the pairs completed by it. Malformed
// inner arrays are skipped. Once the outer array closes the parser resets
// and ignores any trailing text in the same chunk.
func (p *Parser) Feed(chunk string) []Pair {
	p.buf = append(p.buf, chunk...)
	var pairs []Pair

	if !p.started {
		if i := bytes.IndexByte(p.buf, '['); i >= 0 {
			p.started = true
			p.depth = 1
			p.scanIdx = i + 1
			p.innerStart = -1
		}
	}

	processed := 0
	completed := false
	for p.started && p.scanIdx < len(p.buf) {
		switch p.buf[p.scanIdx] {
		case '[':
			p.depth++
			if p.depth == 2 {
				p.innerStart = p.scanIdx
			}
		case ']':
			if p.depth == 2 && p.innerStart >= 0 {
				end := p.scanIdx
				var arr []int
				if err := json.Unmarshal(p.buf[p.innerStart:end+1], &arr); err == nil && len(arr) == 2 {
					pairs = append(pairs, Pair{Attacker: arr[0], Target: arr[1]})
				}
				p.innerStart = -1
				processed = end + 1
			}
			p.depth--
			if p.depth == 0 {
				completed = true
			}
		}
		if completed {
			break
		}
		p.scanIdx++
	}

	if completed {
		p.Reset()
		return pairs
	}

	if processed > 0 {
		p.buf = append(p.buf[:0], p.buf[processed:]...)
		p.scanIdx -= processed
		if p.scanIdx < 0 {
			p.scanIdx = 0
		}
		if p.innerStart >= 0 {
			p.innerStart -= processed
		}
	}

	// While no array has opened, keep only a tail of the prose so a chatty
	// reply cannot grow the buffer without bound.
	if !p.started && len(p.buf) > idleCap {
		p.buf = append(p.buf[:0], p.buf[len(p.buf)-idleCap:]...)
	}

	return pairs
}

// Reset returns the parser to its initial state.
func (p *Parser) Reset() {
	p.buf = p.buf[:0]
	p.started = false
	p.depth = 0
	p.scanIdx = 0
	p.innerStart = -1
}
