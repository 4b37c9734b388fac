package lang

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/molang/log"
)

func TestCache_CompileReturnsSameScript(t *testing.T) {
	c := NewCache()

	s1, err := c.Compile(t.Context(), "q.anim_time * 2")
	require.NoError(t, err)

	s2, err := c.Compile(t.Context(), "q.anim_time * 2")
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, c.Len())

	s3, err := c.Compile(t.Context(), "q.anim_time * 3")
	require.NoError(t, err)

	assert.NotSame(t, s1, s3)
	assert.Equal(t, 2, c.Len())
}

func TestCache_ErrorsNotRetained(t *testing.T) {
	c := NewCache()

	for range 2 {
		s, err := c.Compile(t.Context(), "1 +")
		require.ErrorIs(t, err, ErrParse)
		assert.Nil(t, s)
	}

	assert.Zero(t, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(WithShards(4))

	for i := range 10 {
		_, err := c.Compile(t.Context(), fmt.Sprintf("v.x + %d", i))
		require.NoError(t, err)
	}

	require.Equal(t, 10, c.Len())

	c.Clear()

	assert.Zero(t, c.Len())

	_, err := c.Compile(t.Context(), "v.x + 1")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Options(t *testing.T) {
	c := NewCache(WithOptimize(false))

	s, err := c.Compile(t.Context(), "1 + 2")
	require.NoError(t, err)

	assert.False(t, s.IsStatic())
	assert.Equal(t, "(block (+ 1 2))", Sexpr(s.Root()))
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache()
	sources := []string{
		"q.a + 1",
		"math.sin(q.t * 90)",
		"loop(4, { t.n = t.n + 1; }); t.n",
		"v.x ?? 0",
	}

	const workers = 16

	results := make([][]*Script, workers)

	var g errgroup.Group

	for w := range workers {
		results[w] = make([]*Script, len(sources))

		g.Go(func() error {
			for i, src := range sources {
				s, err := c.Compile(t.Context(), src)
				if err != nil {
					return err
				}

				results[w][i] = s
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, len(sources), c.Len())

	for w := 1; w < workers; w++ {
		for i := range sources {
			assert.Same(t, results[0][i], results[w][i], "worker %d source %d", w, i)
		}
	}
}

func TestDefaultCache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	s1, err := Compile(t.Context(), "c.a")
	require.NoError(t, err)

	s2, err := Compile(t.Context(), "c.a")
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, DefaultCache.Len())
}

func BenchmarkCache_Compile(b *testing.B) {
	c := NewCache()

	_, err := c.Compile(b.Context(), "math.sin(q.anim_time * 90) * v.scale")
	require.NoError(b, err)

	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := c.Compile(b.Context(), "math.sin(q.anim_time * 90) * v.scale"); err != nil {
				b.Error(err)
			}
		}
	})
}

func TestCache_TraceLookup(t *testing.T) {
	const src = "v.speed * 2"

	var buf bytes.Buffer

	quiet := NewCache(WithLogger(log.Make(&buf, log.WithLevel(log.LevelDebug), log.WithPretty(false))))
	_, err := quiet.Compile(t.Context(), src)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "cache lookup")

	buf.Reset()

	traced := NewCache(WithLogger(log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)))

	for range 2 {
		_, err := traced.Compile(t.Context(), src)
		require.NoError(t, err)
	}

	out := buf.String()
	assert.Contains(t, out, fmt.Sprintf("source_hash=%d", xxh3.HashString(src)))
	assert.Contains(t, out, "cache_hit=false")
	assert.Contains(t, out, "cache_hit=true")
}
