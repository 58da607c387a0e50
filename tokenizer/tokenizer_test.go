package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestTokensBasic(t *testing.T) {
	sql := "select 1; -- trailing\n"
	tz := NewSqlTokenizer(sql)

	var types []TokenType
	for tok, err := range tz.Tokens() {
		assert.NoError(t, err)
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}

	assert.Equal(t, []TokenType{
		OTHER, OTHER, OTHER, OTHER, OTHER, OTHER, WHITESPACE, OTHER, SEMICOLON, WHITESPACE, LINE_COMMENT, WHITESPACE, EOF,
	}, types)
}

func TestTokensSkipOptions(t *testing.T) {
	sql := "a /* c */ b;"
	tz := NewSqlTokenizer(sql, TokenizerOptions{SkipWhitespace: true, SkipComments: true})

	var types []TokenType
	for tok, err := range tz.Tokens() {
		assert.NoError(t, err)
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}

	assert.Equal(t, []TokenType{OTHER, OTHER, SEMICOLON, EOF}, types)
}

func TestTokensStringWithEscapedQuote(t *testing.T) {
	sql := "'it''s fine'"
	tz := NewSqlTokenizer(sql)

	var got Token
	for tok, err := range tz.Tokens() {
		assert.NoError(t, err)
		if tok.Type == STRING {
			got = tok
			break
		}
	}

	assert.Equal(t, "'it''s fine'", got.Value)
}

func TestTokensUnterminatedString(t *testing.T) {
	sql := "'unterminated"
	tz := NewSqlTokenizer(sql)

	var sawErr error
	for _, err := range tz.Tokens() {
		if err != nil {
			sawErr = err
			break
		}
	}

	assert.Error(t, sawErr)
}

func TestTokensBracketAndBacktickIdent(t *testing.T) {
	sql := "[col] `tbl`"
	tz := NewSqlTokenizer(sql)

	var types []TokenType
	for tok, err := range tz.Tokens() {
		assert.NoError(t, err)
		if tok.Type == EOF {
			break
		}
		types = append(types, tok.Type)
	}

	assert.Equal(t, []TokenType{BRACKET_IDENT, WHITESPACE, BACKTICK_IDENT}, types)
}

func TestTokensNestedBlockComment(t *testing.T) {
	sql := "/* outer /* inner */ still */ x"
	tz := NewSqlTokenizer(sql)

	first, _, stop := firstNonWhitespace(tz)
	assert.False(t, stop)
	assert.Equal(t, BLOCK_COMMENT, first.Type)
	assert.Equal(t, "/* outer /* inner */ still */", first.Value)
}

func firstNonWhitespace(tz *SqlTokenizer) (Token, error, bool) {
	for tok, err := range tz.Tokens() {
		if err != nil {
			return Token{}, err, true
		}
		if tok.Type == WHITESPACE {
			continue
		}
		return tok, nil, false
	}
	return Token{}, nil, true
}
