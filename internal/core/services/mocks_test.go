package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/classifier"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/metadata"
	"github.com/custodia-labs/fragmenter/internal/splitters"
)

// --- Mock implementations shared by the service tests ---

// mockFileSource serves files from memory in insertion order.
type mockFileSource struct {
	root    string
	paths   []string
	content map[string][]byte
	listErr error
	watch   chan struct{}
}

func newMockFileSource(t *testing.T) *mockFileSource {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return &mockFileSource{
		root:    root,
		content: make(map[string][]byte),
		watch:   make(chan struct{}, 1),
	}
}

// add registers a file under the root and returns its absolute path.
func (m *mockFileSource) add(rel, content string) string {
	path := filepath.Join(m.root, filepath.FromSlash(rel))
	m.paths = append(m.paths, path)
	m.content[path] = []byte(content)
	return path
}

// addMissing registers a path that fails to read.
func (m *mockFileSource) addMissing(rel string) {
	m.paths = append(m.paths, filepath.Join(m.root, filepath.FromSlash(rel)))
}

func (m *mockFileSource) Root() string { return m.root }

func (m *mockFileSource) Files(context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]string(nil), m.paths...), nil
}

func (m *mockFileSource) ReadFile(path string) ([]byte, error) {
	c, ok := m.content[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return c, nil
}

func (m *mockFileSource) Watch(context.Context) (<-chan struct{}, error) {
	return m.watch, nil
}

// mockEmbedder derives a vector from text. Texts containing "FAIL" cannot
// be embedded, which also fails any batch that holds them.
type mockEmbedder struct {
	mu          sync.Mutex
	batchCalls  int
	singleCalls int
	embedded    []string
	failAll     bool
}

var errEmbed = errors.New("embedding rejected")

func (m *mockEmbedder) vector(text string) ([]float32, error) {
	if m.failAll || strings.Contains(text, "FAIL") {
		return nil, errEmbed
	}
	v := []float32{1, float32(len(text)%7) + 1, float32(strings.Count(text, "e")) + 1}
	return v, nil
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.singleCalls++
	v, err := m.vector(text)
	if err == nil {
		m.embedded = append(m.embedded, text)
	}
	return v, err
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.vector(text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	m.embedded = append(m.embedded, texts...)
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return 3 }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

func (m *mockEmbedder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.embedded)
}

// mockLLM records prompts and returns a canned reply.
type mockLLM struct {
	reply   string
	err     error
	prompts []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

func (m *mockLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	return m.reply, m.err
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// tagProcessor marks every chunk it sees.
type tagProcessor struct {
	seen int
	err  error
}

func (p *tagProcessor) Name() string { return "tag" }

func (p *tagProcessor) Process(_ context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.Metadata = c.Metadata.Clone()
		c.Metadata["tagged"] = true
		out[i] = c
	}
	p.seen += len(chunks)
	return out, nil
}

// newTestProducer wires a producer with default settings over files.
func newTestProducer(files *mockFileSource) *Producer {
	settings := domain.DefaultSettings()
	return NewProducer(
		files,
		classifier.New(settings.Chunking.Thresholds),
		splitters.NewSelector(settings.Chunking),
		metadata.NewEnricher(files.root, metadata.WithSettings(settings.Metadata)),
		4,
	)
}

// paragraph returns prose of roughly n characters.
func paragraph(word string, n int) string {
	var b strings.Builder
	for b.Len() < n {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(word)
	}
	return b.String()
}
