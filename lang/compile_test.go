package lang

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestReadSource(t *testing.T) {
	src := strings.Repeat("v.a = v.a + 1;\n", 1000)

	got, err := ReadSource(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, src, got)

	_, err = ReadSource(failingReader{})
	require.ErrorIs(t, err, ErrReadInput)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestNewScriptReader(t *testing.T) {
	s, err := NewScriptReader(t.Context(), strings.NewReader("t.x = 2; t.x * q.k"))
	require.NoError(t, err)

	assert.False(t, s.IsStatic())
	assert.Equal(t, "t.x = 2; t.x * q.k", s.Source())

	v, err := s.Evaluate(t.Context(), NewEnvironment(Functions{"k": Constant(Number(4))}))
	require.NoError(t, err)
	assert.True(t, v.Equal(Number(8)))

	_, err = NewScriptReader(t.Context(), strings.NewReader("t.x = "))
	require.ErrorIs(t, err, ErrParse)
}

func TestLexer_Tokens(t *testing.T) {
	var texts []string

	for tok, err := range Tokens("a + 'b' @") {
		if err != nil {
			require.ErrorIs(t, err, ErrLex)

			break
		}

		texts = append(texts, tok.Text)
	}

	assert.Equal(t, []string{"a", "+", "b"}, texts)
}
