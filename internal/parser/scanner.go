package parser

import "regexp"

/*
 * Scanner is a read-only cursor helper over a script's text.
 *
 * It only answers "where does this pattern match next?" questions; the
 * Splitter owns the cursor and decides how far to advance it. All offsets are
 * 0-based byte offsets into the original text.
 *
 * Patterns handed to MatchAt must begin with ^ so that the match is anchored
 * at the requested offset (the regexp package has no \G).
 */
type Scanner struct {
	text string
}

// NewScanner returns a Scanner over text.
func NewScanner(text string) *Scanner { return &Scanner{text: text} }

// Len returns the length of the underlying text in bytes.
func (s *Scanner) Len() int { return len(s.text) }

// Slice returns text[start:end] clamped to the text bounds.
func (s *Scanner) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s.text) {
		end = len(s.text)
	}
	if start >= end {
		return ""
	}
	return s.text[start:end]
}

// Find returns the first match of re at or after offset. When re has no match
// ok is false and start is the end of the text. Nothing before offset is ever
// considered.
func (s *Scanner) Find(re *regexp.Regexp, offset int) (start, length int, ok bool) {
	if offset > len(s.text) {
		offset = len(s.text)
	}
	loc := re.FindStringIndex(s.text[offset:])
	if loc == nil {
		return len(s.text), 0, false
	}
	return offset + loc[0], loc[1] - loc[0], true
}

// MatchAt returns the submatches of an ^-anchored pattern matched exactly at
// offset, or nil.
func (s *Scanner) MatchAt(re *regexp.Regexp, offset int) []string {
	if offset > len(s.text) {
		return nil
	}
	return re.FindStringSubmatch(s.text[offset:])
}

// MatchLen returns the length of an ^-anchored match at offset, or -1.
func (s *Scanner) MatchLen(re *regexp.Regexp, offset int) int {
	if offset > len(s.text) {
		return -1
	}
	loc := re.FindStringIndex(s.text[offset:])
	if loc == nil {
		return -1
	}
	return loc[1]
}
