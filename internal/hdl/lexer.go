// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl implements a lexer and parser for signal declaration lists.
package hdl

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Type is the type of a lexical item.
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
)

var typeNames = [...]string{
	EOF:          "end of input",
	Raw:          "character",
	Ident:        "identifier",
	BracketOpen:  "'['",
	BracketClose: "']'",
	Comma:        "','",
	Int:          "integer",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "token " + strconv.Itoa(int(t))
}

// Item is a lexical item. Value is a string for identifiers, an int for
// integers and a rune for raw characters.
type Item struct {
	Type  Type
	Pos   int
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case Ident:
		return "identifier " + strconv.Quote(i.Value.(string))
	case Int:
		return "integer " + strconv.Itoa(i.Value.(int))
	case Raw:
		return "character " + strconv.QuoteRune(i.Value.(rune))
	}
	return i.Type.String()
}

// Lexer splits a declaration list into items.
type Lexer struct {
	input string
	pos   int
}

// NewLexer returns a new lexer for input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

func (l *Lexer) next() (rune, int) {
	if l.pos >= len(l.input) {
		return -1, 0
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	return r, w
}

// Lex returns the next item. Once the end of input is reached, Lex keeps
// returning EOF.
func (l *Lexer) Lex() Item {
	r, w := l.next()
	for unicode.IsSpace(r) {
		l.pos += w
		r, w = l.next()
	}
	start := l.pos
	switch {
	case r < 0:
		return Item{EOF, start, nil}
	case r == '[':
		l.pos += w
		return Item{BracketOpen, start, "["}
	case r == ']':
		l.pos += w
		return Item{BracketClose, start, "]"}
	case r == ',':
		l.pos += w
		return Item{Comma, start, ","}
	case '0' <= r && r <= '9':
		n := 0
		for '0' <= r && r <= '9' {
			n = n*10 + int(r-'0')
			l.pos += w
			r, w = l.next()
		}
		return Item{Int, start, n}
	case unicode.IsLetter(r) || r == '_':
		for unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			l.pos += w
			r, w = l.next()
		}
		return Item{Ident, start, l.input[start:l.pos]}
	}
	l.pos += w
	return Item{Raw, start, r}
}
