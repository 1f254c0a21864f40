package parser

import (
	"iter"
	"regexp"
	"strings"
)

// scanState is the state of the boundary search for one statement
type scanState int

const (
	seekBoundary scanState = iota // looking for the delimiter or an opener
	seekCloser                    // inside a quote or comment, looking for its closer
	atEOF                         // end of input reached
	delimited                     // active delimiter found in Normal mode
)

/*
 * Splitter cuts a script into statements.
 *
 * It scans forward for the nearest active delimiter, quote opener, comment
 * opener or end of input. Delimiters are honoured only in Normal mode; inside a
 * quote or comment only that mode's closer (or end of input) is searched for.
 * A DELIMITER directive in front of a statement replaces the active delimiter.
 *
 * Statements are produced lazily by Next and the sequence cannot be restarted.
 * A Splitter is not safe for concurrent use.
 */
type Splitter struct {
	script   *Script
	scanner  *Scanner
	patterns *patternSet

	delimiter string
	boundary  *regexp.Regexp

	mode   Mode
	closer *regexp.Regexp

	queryOffset int // start of the current statement
	parseOffset int // scan position, never behind queryOffset
	significant int // end of the last non-space, non-comment text seen

	lineOffset int // offset up to which newlines have been counted
	line       int // 1-indexed line at lineOffset

	done bool
}

// NewSplitter returns a Splitter over script using the dialect's quoting rules
func NewSplitter(script *Script, dialect Dialect) *Splitter {
	s := &Splitter{
		script:   script,
		scanner:  NewScanner(script.Text),
		patterns: newPatternSet(dialect),
		line:     1,
	}
	s.setDelimiter(DefaultDelimiter)
	return s
}

// Delimiter returns the active statement delimiter
func (s *Splitter) Delimiter() string { return s.delimiter }

// Mode returns the current lexical mode. Between statements it is Normal.
func (s *Splitter) Mode() Mode { return s.mode }

// Dialect returns the dialect the Splitter was built for
func (s *Splitter) Dialect() Dialect { return s.patterns.dialect }

// Next returns the next non-empty statement. ok is false once the script is
// exhausted.
func (s *Splitter) Next() (stmt Statement, ok bool) {
	for !s.done {
		s.resolveDirectives()

		start := s.queryOffset
		end, delimiter, found := s.scanStatement()
		if !found {
			s.done = true
			break
		}
		s.queryOffset = s.parseOffset

		if stmt, ok := s.makeStatement(start, end, min(s.significant, end), delimiter); ok {
			return stmt, true
		}
	}
	return Statement{}, false
}

// All returns the remaining statements as a single-use sequence
func (s *Splitter) All() iter.Seq[Statement] {
	return func(yield func(Statement) bool) {
		for {
			stmt, ok := s.Next()
			if !ok || !yield(stmt) {
				return
			}
		}
	}
}

// scanStatement runs the state machine from parseOffset until the statement
// ends. It returns the end offset of the statement text and the delimiter
// that ended it; found is false when only whitespace and comments remained.
func (s *Splitter) scanStatement() (end int, delimiter string, found bool) {
	state := seekBoundary
	s.significant = s.queryOffset
	for {
		switch state {
		case seekBoundary:
			state = s.stepBoundary()
		case delimited:
			// stepBoundary left parseOffset just past the delimiter
			return s.parseOffset - len(s.delimiter), s.delimiter, true
		case seekCloser:
			state = s.stepCloser()
		case atEOF:
			if s.scanner.MatchLen(s.patterns.trailing, s.queryOffset) >= 0 {
				s.parseOffset = s.scanner.Len()
				return s.scanner.Len(), "", false
			}
			s.parseOffset = s.scanner.Len()
			return s.scanner.Len(), "", true
		}
	}
}

// stepBoundary finds the nearest delimiter, opener or end of input and
// returns the state to continue in.
func (s *Splitter) stepBoundary() scanState {
	from := s.parseOffset
	start, length, _ := s.scanner.Find(s.boundary, from)
	found := s.scanner.Slice(start, start+length)
	s.markSignificant(from, start)
	s.parseOffset = start + length

	switch {
	case found == "":
		return atEOF
	case found == s.delimiter:
		return delimited
	}

	s.mode = s.patterns.modeFor(found)
	switch s.mode {
	case InLineComment:
		if strings.HasSuffix(found, "\n") {
			// bare "--" at end of line: the opener already consumed the newline
			s.mode = Normal
			return seekBoundary
		}
		s.closer = s.patterns.closers[InLineComment]
	case InDollarQuote:
		if start > 0 && isIdentByte(s.scanner.Slice(start-1, start)[0]) {
			// "$" continuing an identifier such as foo$bar$ is not a tag
			s.mode = Normal
			s.parseOffset = start + 1
			s.significant = s.parseOffset
			return seekBoundary
		}
		s.closer = s.patterns.dollarCloser(found)
	default:
		s.closer = s.patterns.closers[s.mode]
	}
	return seekCloser
}

// stepCloser consumes the current quote or comment up to its closer. A
// backslash pair inside an escaping quote is skipped. End of input closes any
// mode.
func (s *Splitter) stepCloser() scanState {
	for {
		start, length, _ := s.scanner.Find(s.closer, s.parseOffset)
		if length == 0 {
			s.parseOffset = start
			if !s.mode.isComment() {
				s.significant = start
			}
			s.mode = Normal
			return atEOF
		}
		s.parseOffset = start + length
		if s.mode.escapes() && s.scanner.Slice(start, start+1) == `\` {
			continue
		}
		if !s.mode.isComment() {
			s.significant = s.parseOffset
		}
		s.mode = Normal
		s.closer = nil
		return seekBoundary
	}
}

// markSignificant records the end of any non-space text in [from, to), which
// the caller has established lies outside quotes and comments.
func (s *Splitter) markSignificant(from, to int) {
	text := strings.TrimRightFunc(s.scanner.Slice(from, to), isSpace)
	if text != "" {
		s.significant = from + len(text)
	}
}

// makeStatement trims a candidate and reports whether anything is left.
// significant bounds the text on the right so trailing comments are dropped.
func (s *Splitter) makeStatement(start, end, significant int, delimiter string) (Statement, bool) {
	raw := s.scanner.Slice(start, end)

	lead := s.scanner.MatchLen(s.patterns.leading, start)
	if lead < 0 {
		lead = 0
	}
	if start+lead >= significant {
		return Statement{}, false
	}
	sql := s.scanner.Slice(start+lead, significant)

	return Statement{
		SQL:       sql,
		Raw:       raw,
		Start:     start,
		End:       end,
		Delimiter: delimiter,
		Line:      s.lineAt(start + lead),
	}, true
}

// lineAt converts an offset to a 1-indexed line number. Offsets passed in are
// non-decreasing, so newlines are counted only once per pass.
func (s *Splitter) lineAt(offset int) int {
	if offset < s.lineOffset {
		return 1 + strings.Count(s.scanner.Slice(0, offset), "\n")
	}
	s.line += strings.Count(s.scanner.Slice(s.lineOffset, offset), "\n")
	s.lineOffset = offset
	return s.line
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

// isIdentByte reports whether b can continue an unquoted identifier
func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b >= 0x80 ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
