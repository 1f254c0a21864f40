package parser

// Statement is one raw statement cut out of a script
type Statement struct {
	SQL       string // Statement text, leading comments and surrounding whitespace trimmed
	Raw       string // Untrimmed span of the script, without the delimiter
	Start     int    // Byte offset of Raw in the script
	End       int    // Byte offset just past Raw
	Delimiter string // Terminator that ended the statement, empty at end of input
	Line      int    // 1-indexed line of the first significant byte
}

// Mode is the lexical mode of the splitter at a cursor position
type Mode int

const (
	Normal Mode = iota
	InSingleQuote
	InDoubleQuote
	InBacktickOrBracket
	InBlockComment
	InLineComment
	InDollarQuote
)

// String returns a string representation of Mode
func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case InSingleQuote:
		return "single-quote"
	case InDoubleQuote:
		return "double-quote"
	case InBacktickOrBracket:
		return "backtick"
	case InBlockComment:
		return "block-comment"
	case InLineComment:
		return "line-comment"
	case InDollarQuote:
		return "dollar-quote"
	default:
		return "unknown"
	}
}

// escapes reports whether a backslash consumes the following character
func (m Mode) escapes() bool {
	return m == InSingleQuote || m == InDoubleQuote || m == InBacktickOrBracket
}

func (m Mode) isComment() bool {
	return m == InBlockComment || m == InLineComment
}

// ClauseKind classifies an ALTER TABLE sub-clause
type ClauseKind int

const (
	ClauseOther ClauseKind = iota
	ClauseForeignKeyAdd
)

// String returns a string representation of ClauseKind
func (k ClauseKind) String() string {
	if k == ClauseForeignKeyAdd {
		return "foreign-key-add"
	}
	return "other"
}

// Warning reports a sub-clause the decomposer dropped
type Warning struct {
	Clause string
	Reason string
}

func (w Warning) String() string {
	return w.Reason + ": " + w.Clause
}
