package lang

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestExpandReader(t *testing.T) {
	ClearCache()

	src := "with_block! { f(1) { |x| x } }\n"

	r, err := ExpandReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ExpandReader error: %v", err)
	}

	if want := "f(1, |x| { x })\n"; r.Source != want {
		t.Errorf("Source = %q, want %q", r.Source, want)
	}
}

func TestExpandReader_Caching(t *testing.T) {
	ClearCache()

	src := "with_block! { f() { 1 } }"

	first, err := ExpandReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ExpandReader error: %v", err)
	}

	first.Sites[0].Args = append(first.Sites[0].Args, "mutated")
	first.Source = "mutated"

	second, err := ExpandReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ExpandReader error: %v", err)
	}

	if second.Source != "f(|| { 1 })" || len(second.Sites[0].Args) != 0 {
		t.Errorf("cached result was modified through a returned copy: %+v", second)
	}

	n := 0

	globalCache.Range(func(any, any) bool {
		n++

		return true
	})

	if n != 1 {
		t.Errorf("cache holds %d entries, want 1", n)
	}

	if _, err := ExpandReader(
		context.Background(),
		strings.NewReader(src),
		WithMacros("other"),
	); err != nil {
		t.Fatalf("ExpandReader error: %v", err)
	}

	n = 0

	globalCache.Range(func(any, any) bool {
		n++

		return true
	})

	if n != 2 {
		t.Errorf("cache holds %d entries after option change, want 2", n)
	}
}

func TestExpandReader_FailureNotCached(t *testing.T) {
	ClearCache()

	src := "with_block! { f() }"

	for range 2 {
		_, err := ExpandReader(context.Background(), strings.NewReader(src))
		if !errors.Is(err, ErrMissingBlock) {
			t.Fatalf("error = %v, want ErrMissingBlock", err)
		}
	}

	globalCache.Range(func(key, _ any) bool {
		t.Errorf("failed expansion left cache entry %v", key)

		return true
	})
}

func TestExpandReader_ReadError(t *testing.T) {
	_, err := ExpandReader(context.Background(), failingReader{})
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("error = %v, want ErrReadInput", err)
	}
}

func TestExpandReader_Concurrent(t *testing.T) {
	ClearCache()

	src := "with_block! { a() { with_block! { b() { 1 } } } }"

	var wg sync.WaitGroup

	errs := make(chan error, 16)

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			r, err := ExpandReader(context.Background(), strings.NewReader(src))
			if err != nil {
				errs <- err

				return
			}

			if r.Source != "a(|| { b(|| { 1 }) })" {
				errs <- errors.New("unexpected source " + r.Source)
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func BenchmarkExpandString(b *testing.B) {
	src := strings.Repeat("fn f() {\n    with_block! { spawn(a, b) { |x: u8| run(x); } }\n}\n", 64)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := ExpandString(context.Background(), src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExpandReader_Cached(b *testing.B) {
	ClearCache()

	src := strings.Repeat("with_block! { f() { x } }\n", 64)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := ExpandReader(context.Background(), strings.NewReader(src)); err != nil {
			b.Fatal(err)
		}
	}
}
