// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package sqlparse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer splits SQL text into leaf tokens. Every byte of the input ends up in
// exactly one token.
type Lexer struct {
	input        string
	position     int  // start of the current char
	readPosition int  // start of the next char
	ch           rune // current char; 0 at end of input
	prev         *Token
}

// NewLexer creates a Lexer for input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokenize returns all leaf tokens of input.
func Tokenize(input string) ([]*Token, error) {
	l := NewLexer(input)
	var out []*Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return out, nil
		}
		out = append(out, tok)
	}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

func (l *Lexer) peekChar() rune {
	return l.peekAt(l.readPosition)
}

func (l *Lexer) peekAt(offset int) rune {
	if offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[offset:])
	return r
}

// seek moves the lexer so that the current char starts at offset.
func (l *Lexer) seek(offset int) {
	l.readPosition = offset
	l.readChar()
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// NextToken returns the next leaf, or nil at end of input.
func (l *Lexer) NextToken() (*Token, error) {
	if l.atEOF() {
		return nil, nil
	}
	tok, err := l.scan()
	if err != nil {
		return nil, err
	}
	if tok.Kind != KindWhitespace && tok.Class != ClassComment {
		l.prev = tok
	}
	return tok, nil
}

func (l *Lexer) scan() (*Token, error) {
	start := l.position

	switch ch := l.ch; {
	case isSpace(ch):
		for !l.atEOF() && isSpace(l.ch) {
			l.readChar()
		}
		return l.emit(KindWhitespace, ClassNone, start), nil

	case ch == '\'':
		if err := l.readQuoted('\'', false); err != nil {
			return nil, err
		}
		return l.emit(KindString, ClassNone, start), nil

	case ch == '"' || ch == '`':
		if err := l.readQuoted(ch, false); err != nil {
			return nil, err
		}
		return l.emit(KindOther, ClassQuotedName, start), nil

	case ch == '[':
		if isIdentStart(l.peekChar()) {
			end := strings.IndexByte(l.input[start:], ']')
			if end > 0 {
				l.seek(start + end + 1)
				return l.emit(KindOther, ClassQuotedName, start), nil
			}
		}
		l.readChar()
		return l.emit(KindPunctuation, ClassNone, start), nil

	case ch == ']':
		l.readChar()
		return l.emit(KindPunctuation, ClassNone, start), nil

	case ch == '-':
		switch p := l.peekChar(); {
		case p == '-':
			l.readLineComment()
			return l.emit(KindOther, ClassComment, start), nil
		case (isDigit(p) || (p == '.' && isDigit(l.peekAt(l.readPosition+1)))) && !endsOperand(l.prev):
			l.readChar()
			return l.readNumber(start), nil
		case p == '>':
			l.readChar()
			l.readChar()
			if l.ch == '>' {
				l.readChar()
			}
			return l.emit(KindOther, ClassOperator, start), nil
		}
		l.readChar()
		return l.emit(KindOther, ClassOperator, start), nil

	case ch == '#':
		if p := l.peekChar(); p == ' ' || p == '\t' || p == '\n' || p == '\r' || p == 0 {
			l.readLineComment()
			return l.emit(KindOther, ClassComment, start), nil
		}
		l.readChar()
		return l.emit(KindOther, ClassOperator, start), nil

	case ch == '/':
		if l.peekChar() == '*' {
			end := strings.Index(l.input[start+2:], "*/")
			if end < 0 {
				return nil, newParseError(l.input, start, "unterminated block comment", nil)
			}
			l.seek(start + 2 + end + 2)
			return l.emit(KindOther, ClassComment, start), nil
		}
		l.readChar()
		return l.emit(KindOther, ClassOperator, start), nil

	case isDigit(ch):
		return l.readNumber(start), nil

	case ch == '.':
		if isDigit(l.peekChar()) && !endsOperand(l.prev) {
			return l.readNumber(start), nil
		}
		l.readChar()
		return l.emit(KindPunctuation, ClassNone, start), nil

	case ch == '(' || ch == ')' || ch == ',' || ch == ';':
		l.readChar()
		return l.emit(KindPunctuation, ClassNone, start), nil

	case ch == '?':
		l.readChar()
		return l.emit(KindOther, ClassPlaceholder, start), nil

	case ch == '$':
		return l.readDollar(start)

	case ch == ':':
		if l.peekChar() == ':' {
			l.readChar()
			l.readChar()
			return l.emit(KindOther, ClassOperator, start), nil
		}
		if isIdentStart(l.peekChar()) {
			l.readChar()
			l.readIdent()
			return l.emit(KindOther, ClassPlaceholder, start), nil
		}
		l.readChar()
		return l.emit(KindOther, ClassOperator, start), nil

	case ch == '%':
		switch l.peekChar() {
		case 's', 'd':
			l.readChar()
			l.readChar()
			return l.emit(KindOther, ClassPlaceholder, start), nil
		case '(':
			if end := strings.Index(l.input[start:], ")s"); end > 0 && !strings.ContainsAny(l.input[start:start+end], " \t\n") {
				l.seek(start + end + 2)
				return l.emit(KindOther, ClassPlaceholder, start), nil
			}
		}
		l.readChar()
		return l.emit(KindOther, ClassOperator, start), nil

	case ch == '@':
		l.readChar()
		if l.ch == '@' {
			l.readChar()
		}
		l.readIdent()
		return l.emit(KindOther, ClassName, start), nil

	case ch == '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
		} else if l.ch == '>' {
			l.readChar()
			return l.emit(KindOther, ClassOperator, start), nil
		}
		return l.emit(KindOther, ClassComparison, start), nil

	case ch == '<':
		l.readChar()
		switch l.ch {
		case '=':
			l.readChar()
			if l.ch == '>' {
				l.readChar()
			}
		case '>':
			l.readChar()
		case '<':
			l.readChar()
			return l.emit(KindOther, ClassOperator, start), nil
		}
		return l.emit(KindOther, ClassComparison, start), nil

	case ch == '>':
		l.readChar()
		switch l.ch {
		case '=':
			l.readChar()
		case '>':
			l.readChar()
			return l.emit(KindOther, ClassOperator, start), nil
		}
		return l.emit(KindOther, ClassComparison, start), nil

	case ch == '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.emit(KindOther, ClassComparison, start), nil
		}
		return l.emit(KindOther, ClassOperator, start), nil

	case ch == '|':
		l.readChar()
		if l.ch == '|' {
			l.readChar()
		}
		return l.emit(KindOther, ClassOperator, start), nil

	case ch == '*':
		l.readChar()
		return l.emit(KindOther, ClassWildcard, start), nil

	case ch == '+' || ch == '^' || ch == '&' || ch == '~':
		l.readChar()
		return l.emit(KindOther, ClassOperator, start), nil

	case isIdentStart(ch):
		return l.readWord(start)
	}

	l.readChar()
	return l.emit(KindOther, ClassError, start), nil
}

func (l *Lexer) emit(kind Kind, class Class, start int) *Token {
	return newLeaf(kind, class, l.input[start:l.position])
}

// readQuoted consumes a quoted run starting at the current quote char.
// A doubled quote char is an escaped quote; backslash escapes are honored
// when backslash is true.
func (l *Lexer) readQuoted(quote rune, backslash bool) error {
	start := l.position
	l.readChar()
	for {
		if l.atEOF() {
			return newParseError(l.input, start, "unterminated quoted literal", nil)
		}
		switch {
		case backslash && l.ch == '\\':
			l.readChar()
			if !l.atEOF() {
				l.readChar()
			}
			continue
		case l.ch == quote:
			l.readChar()
			if l.ch == quote {
				l.readChar()
				continue
			}
			return nil
		}
		l.readChar()
	}
}

func (l *Lexer) readLineComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.readChar()
	}
	if l.ch == '\n' {
		l.readChar()
	}
}

func (l *Lexer) readIdent() {
	for !l.atEOF() && isIdentPart(l.ch) {
		l.readChar()
	}
}

// readNumber reads an integer, decimal or exponent literal. The caller may
// already have consumed a leading sign.
func (l *Lexer) readNumber(start int) *Token {
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') && isHexDigit(l.peekAt(l.readPosition+1)) {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return l.finishNumber(start, ClassHex)
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && l.peekChar() != '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		p := l.peekChar()
		if isDigit(p) || ((p == '+' || p == '-') && isDigit(l.peekAt(l.readPosition+1))) {
			l.readChar()
			l.readChar()
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.finishNumber(start, ClassNone)
}

// finishNumber turns "1abc" style runs into names instead of numbers.
func (l *Lexer) finishNumber(start int, class Class) *Token {
	if isIdentStart(l.ch) {
		l.readIdent()
		return l.emit(KindOther, ClassName, start)
	}
	if class == ClassHex {
		return l.emit(KindOther, ClassHex, start)
	}
	return l.emit(KindNumber, ClassNone, start)
}

// readDollar handles $1 placeholders and $tag$...$tag$ strings.
func (l *Lexer) readDollar(start int) (*Token, error) {
	p := l.peekChar()
	if isDigit(p) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		return l.emit(KindOther, ClassPlaceholder, start), nil
	}
	if p == '$' || isIdentStart(p) {
		rest := l.input[start+1:]
		end := strings.IndexByte(rest, '$')
		if end >= 0 && isTag(rest[:end]) {
			tag := l.input[start : start+1+end+1]
			body := start + len(tag)
			closeAt := strings.Index(l.input[body:], tag)
			if closeAt < 0 {
				return nil, newParseError(l.input, start, "unterminated dollar-quoted string", nil)
			}
			l.seek(body + closeAt + len(tag))
			return l.emit(KindString, ClassNone, start), nil
		}
	}
	l.readChar()
	return l.emit(KindOther, ClassOperator, start), nil
}

func (l *Lexer) readWord(start int) (*Token, error) {
	l.readIdent()
	word := l.input[start:l.position]

	// E'..', N'..', X'..', B'..' prefixed strings
	if len(word) == 1 && l.ch == '\'' {
		switch word[0] {
		case 'e', 'E':
			if err := l.readQuoted('\'', true); err != nil {
				return nil, err
			}
			return l.emit(KindString, ClassNone, start), nil
		case 'n', 'N', 'x', 'X', 'b', 'B':
			if err := l.readQuoted('\'', false); err != nil {
				return nil, err
			}
			return l.emit(KindString, ClassNone, start), nil
		}
	}

	// Qualified names: the part after a dot is never a keyword.
	if l.prev != nil && l.prev.IsPunct(".") {
		return l.emit(KindOther, ClassName, start), nil
	}

	upper := strings.ToUpper(word)
	if alts, ok := phrases[upper]; ok {
		for _, alt := range alts {
			if end, ok := l.matchPhrase(l.position, alt); ok {
				l.seek(end)
				last := alt[len(alt)-1]
				if comparisonWords[last] {
					return l.emit(KindOther, ClassComparison, start), nil
				}
				return l.emit(KindKeyword, ClassNone, start), nil
			}
		}
	}
	if comparisonWords[upper] {
		return l.emit(KindOther, ClassComparison, start), nil
	}
	if class, ok := lookupKeyword(upper); ok {
		return l.emit(KindKeyword, class, start), nil
	}
	return l.emit(KindOther, ClassName, start), nil
}

// matchPhrase checks whether words follow offset, each preceded by
// whitespace. It returns the offset just past the last word.
func (l *Lexer) matchPhrase(offset int, words []string) (int, bool) {
	pos := offset
	for _, w := range words {
		ws := pos
		for ws < len(l.input) && isSpace(rune(l.input[ws])) {
			ws++
		}
		if ws == pos {
			return 0, false
		}
		end := ws
		for end < len(l.input) {
			r, size := utf8.DecodeRuneInString(l.input[end:])
			if !isIdentPart(r) {
				break
			}
			end += size
		}
		if !strings.EqualFold(l.input[ws:end], w) {
			return 0, false
		}
		pos = end
	}
	return pos, true
}

// endsOperand reports whether tok can be the left side of a binary operator,
// in which case a following '-' is subtraction rather than a sign.
func endsOperand(tok *Token) bool {
	if tok == nil {
		return false
	}
	switch {
	case tok.Kind == KindString || tok.Kind == KindNumber:
		return true
	case tok.Class == ClassName || tok.Class == ClassQuotedName || tok.Class == ClassPlaceholder || tok.Class == ClassHex:
		return true
	case tok.IsPunct(")") || tok.IsPunct("]"):
		return true
	case tok.IsKeyword("NULL", "TRUE", "FALSE", "CURRENT_DATE", "CURRENT_TIME", "CURRENT_TIMESTAMP"):
		return true
	}
	return false
}

func isTag(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || (ch >= utf8.RuneSelf && unicode.IsLetter(ch))
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$'
}
