package parser

// DefaultDelimiter terminates statements until a DELIMITER directive says otherwise
const DefaultDelimiter = ";"

// resolveDirectives consumes every DELIMITER directive found at the start of
// the next statement. The directive text is skipped, never emitted.
func (s *Splitter) resolveDirectives() {
	for {
		m := s.scanner.MatchAt(s.patterns.directive, s.queryOffset)
		if m == nil {
			return
		}
		s.setDelimiter(m[1])
		s.queryOffset += len(m[0])
		s.parseOffset = s.queryOffset
	}
}

// setDelimiter replaces the active delimiter. An empty token is ignored so the
// delimiter can never become empty.
func (s *Splitter) setDelimiter(delimiter string) {
	if delimiter == "" {
		return
	}
	s.delimiter = delimiter
	s.boundary = s.patterns.boundaryFor(delimiter)
}
