// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     lexer
// Description: Tokenizer for the ladder language
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

// Package lexer converts ladder source text into a lazy stream of tokens.
//
// The source is terminated with a newline once at construction so the last
// statement always ends properly. Spaces, tabs, carriage returns and '#'
// comments are skipped; comments never consume the line terminator.
package lexer

import (
	mdwerror "github.com/msto63/rungc/foundation/core/error"
)

// Lexer performs lexical analysis on ladder source text
type Lexer struct {
	input    string // Source plus trailing newline
	position int    // Current position in input (points to ch)
	ch       byte   // Current char under examination, 0 at end
	line     int    // Current line number (1-based)
}

// New creates a new lexer for the given source text
func New(source string) *Lexer {
	l := &Lexer{
		input: source + "\n",
		line:  1,
	}
	l.ch = l.input[0]
	return l
}

// Line returns the line the cursor is currently on
func (l *Lexer) Line() int {
	return l.line
}

// NextToken returns the next token from the input.
// After the end of input every call returns an EOF token.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()
	l.skipComment()

	line := l.line
	var tok Token

	switch l.ch {
	case '=':
		tok = newToken(Eq, l.ch, line)
	case '<':
		tok = newToken(OpenAngle, l.ch, line)
	case '>':
		tok = newToken(CloseAngle, l.ch, line)
	case '[':
		tok = newToken(OpenBracket, l.ch, line)
	case ']':
		tok = newToken(CloseBracket, l.ch, line)
	case '.':
		tok = newToken(Indexer, l.ch, line)
	case '\n':
		tok = newToken(NewLine, l.ch, line)
	case 0:
		return Token{Kind: EOF, Line: line}, nil
	default:
		switch {
		case isDigit(l.ch):
			text, err := l.readNumber()
			if err != nil {
				return Token{}, err
			}
			tok = Token{Kind: Number, Text: text, Line: line}
		case isLetter(l.ch):
			text := l.readIdentifier()
			tok = Token{Kind: LookupIdent(text), Text: text, Line: line}
		default:
			return Token{}, mdwerror.Newf("Unknown token: %c", l.ch).
				WithCode(mdwerror.CodeLexical).
				WithOperation("lexer.NextToken").
				WithDetail("line", line)
		}
	}

	l.readChar()
	return tok, nil
}

// Tokenize returns every token of source up to and including EOF
func Tokenize(source string) ([]Token, error) {
	l := New(source)
	var tokens []Token

	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

// readChar advances to the next character, counting consumed newlines
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
	}

	l.position++
	if l.position >= len(l.input) {
		l.position = len(l.input)
		l.ch = 0
		return
	}
	l.ch = l.input[l.position]
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

// readNumber reads digits with an optional fraction. The cursor is left on
// the last character of the literal.
func (l *Lexer) readNumber() (string, error) {
	start := l.position

	for isDigit(l.peekChar()) {
		l.readChar()
	}

	if l.peekChar() == '.' {
		l.readChar()
		if !isDigit(l.peekChar()) {
			return "", mdwerror.New("Illegal character in number").
				WithCode(mdwerror.CodeLexical).
				WithOperation("lexer.readNumber").
				WithDetail("line", l.line)
		}
		for isDigit(l.peekChar()) {
			l.readChar()
		}
	}

	return l.input[start : l.position+1], nil
}

// readIdentifier reads a letter followed by letters and digits. The cursor
// is left on the last character of the word.
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.peekChar()) || isDigit(l.peekChar()) {
		l.readChar()
	}
	return l.input[start : l.position+1]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

// skipComment skips a '#' comment but leaves the newline in place
func (l *Lexer) skipComment() {
	if l.ch != '#' {
		return
	}
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func newToken(kind Kind, ch byte, line int) Token {
	return Token{Kind: kind, Text: string(ch), Line: line}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
