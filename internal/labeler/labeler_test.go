package labeler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/kovalyov-valentin/autoblog/internal/ai"
	"github.com/kovalyov-valentin/autoblog/internal/labeler"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/retry"
	"github.com/kovalyov-valentin/autoblog/internal/upstream"
	"github.com/stretchr/testify/require"
)

type fakeTopics []model.Topic

func (f fakeTopics) Latest(_ context.Context, limit uint64) ([]model.Topic, error) {
	if uint64(len(f)) > limit {
		return f[:limit], nil
	}
	return f, nil
}

type fakeLabels struct {
	stored []string
	calls  int
}

func (f *fakeLabels) Store(_ context.Context, labels []string) (int64, error) {
	f.calls++
	f.stored = append(f.stored, labels...)
	return int64(len(labels)), nil
}

// Генератор отдает ответы по очереди, последний повторяется
type fakeGenerator struct {
	replies []reply
	calls   int
	prompts []string
}

type reply struct {
	text string
	err  error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, _ *ai.Schema) (string, error) {
	g.prompts = append(g.prompts, prompt)
	r := g.replies[min(g.calls, len(g.replies)-1)]
	g.calls++
	return r.text, r.err
}

var topics = fakeTopics{
	{ID: 3, Title: "AI chips get faster"},
	{ID: 2, Title: "Rust in the kernel"},
	{ID: 1, Title: "Quantum networking trial"},
	{ID: 0, Title: "Too old to be sampled"},
}

func overloaded() error {
	return &upstream.StatusError{Service: "gemini", Code: http.StatusServiceUnavailable, Message: "overloaded"}
}

func TestLabeler_Run(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []reply{{text: `{"labels": ["AI Hardware Race", " Systems Programming Shift ", "AI Hardware Race"]}`}}}
	labels := &fakeLabels{}

	inserted, err := labeler.New(topics, labels, gen, retry.OnOverload(3, 0)).Run(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, inserted)
	require.Equal(t, []string{"AI Hardware Race", "Systems Programming Shift"}, labels.stored)

	require.Len(t, gen.prompts, 1)
	require.Contains(t, gen.prompts[0], "Titles:\nAI chips get faster\nRust in the kernel\nQuantum networking trial")
	require.NotContains(t, gen.prompts[0], "Too old")
}

func TestLabeler_Run_RetriesOverloadThenGivesUp(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []reply{{err: overloaded()}}}
	labels := &fakeLabels{}

	inserted, err := labeler.New(topics, labels, gen, retry.OnOverload(3, 0)).Run(context.Background())
	require.Error(t, err)
	require.Zero(t, inserted)
	require.Equal(t, 3, gen.calls)
	require.Zero(t, labels.calls)
}

func TestLabeler_Run_RecoversAfterOverload(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []reply{
		{err: overloaded()},
		{text: `{"labels": ["Edge Computing Growth"]}`},
	}}
	labels := &fakeLabels{}

	inserted, err := labeler.New(topics, labels, gen, retry.OnOverload(3, 0)).Run(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, inserted)
	require.Equal(t, 2, gen.calls)
}

func TestLabeler_Run_NoRetryOnOtherStatus(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []reply{{err: &upstream.StatusError{Service: "gemini", Code: http.StatusBadRequest}}}}
	labels := &fakeLabels{}

	_, err := labeler.New(topics, labels, gen, retry.OnOverload(3, 0)).Run(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, gen.calls)
	require.Zero(t, labels.calls)
}

func TestLabeler_Run_SchemaErrorSavesNothing(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []reply{{text: `{"labels": "not an array"}`}}}
	labels := &fakeLabels{}

	_, err := labeler.New(topics, labels, gen, retry.OnOverload(3, 0)).Run(context.Background())

	var schemaErr *ai.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, 1, gen.calls)
	require.Zero(t, labels.calls)
}

func TestLabeler_Run_NoTopics(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []reply{{text: `{"labels": []}`}}}
	labels := &fakeLabels{}

	inserted, err := labeler.New(fakeTopics{}, labels, gen, retry.OnOverload(3, 0)).Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, inserted)
	require.Zero(t, gen.calls)
	require.Zero(t, labels.calls)
}

func TestLabeler_Run_ZeroLabels(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: []reply{{text: `{"labels": []}`}}}
	labels := &fakeLabels{}

	inserted, err := labeler.New(topics, labels, gen, retry.OnOverload(3, 0)).Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, inserted)
	require.Zero(t, labels.calls)
}
