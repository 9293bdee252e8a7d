package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/server"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// Хранилище в памяти. Ошибки для отсутствующих id такие же, как у postgres реализации.
type memStore struct {
	drafts  map[int64]model.Draft
	updates int
	err     error
}

func newMemStore(drafts ...model.Draft) *memStore {
	return &memStore{drafts: lo.KeyBy(drafts, func(d model.Draft) int64 { return d.ID })}
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

func (m *memStore) Drafts(_ context.Context, limit uint64) ([]model.Draft, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := lo.Values(m.drafts)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) DraftByID(_ context.Context, id int64) (model.Draft, error) {
	if m.err != nil {
		return model.Draft{}, m.err
	}
	d, ok := m.drafts[id]
	if !ok {
		return model.Draft{}, notFound("storage.DraftPostgresStorage.DraftByID")
	}
	return d, nil
}

func (m *memStore) Update(_ context.Context, id int64, u model.DraftUpdate) (model.Draft, error) {
	m.updates++
	d, ok := m.drafts[id]
	if !ok {
		return model.Draft{}, notFound("storage.DraftPostgresStorage.Update")
	}
	d.Title, d.Summary, d.Body = u.Title, u.Summary, u.Body
	if u.ImagePrompt != nil {
		d.ImagePrompt = nil
		if *u.ImagePrompt != "" {
			d.ImagePrompt = u.ImagePrompt
		}
	}
	m.drafts[id] = d
	return d, nil
}

func (m *memStore) Approve(_ context.Context, id int64) (model.Draft, error) {
	d, ok := m.drafts[id]
	if !ok {
		return model.Draft{}, notFound("storage.DraftPostgresStorage.Approve")
	}
	d.Status = model.DraftApproved
	m.drafts[id] = d
	return d, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func sampleDrafts() []model.Draft {
	return []model.Draft{
		{ID: 4, Title: "Older draft", Summary: "s", Body: "b", Images: []string{}, Status: model.DraftApproved},
		{ID: 5, Title: "AI <chips>", Summary: "Chip makers compete.", Body: "Long body.", ImagePrompt: lo.ToPtr("circuit board"), Images: []string{"https://img/x.jpg"}, Status: model.DraftPending},
	}
}

func newServer(t *testing.T, store *memStore) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(server.New(store, fakePinger{}).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func noRedirect(srv *httptest.Server) *http.Client {
	c := srv.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return c
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := noRedirect(srv).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(data, &body))
	return body["error"]
}

func TestListDrafts(t *testing.T) {
	t.Parallel()

	srv := newServer(t, newMemStore(sampleDrafts()...))

	resp, data := do(t, srv, http.MethodGet, "/admin/drafts", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var drafts []model.Draft
	require.NoError(t, json.Unmarshal(data, &drafts))
	require.Len(t, drafts, 2)
	require.EqualValues(t, 5, drafts[0].ID)
}

func TestListDrafts_StoreError(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.err = errors.New("pq: connection refused")
	srv := newServer(t, store)

	resp, data := do(t, srv, http.MethodGet, "/admin/drafts", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "internal server error", errorMessage(t, data))
	require.NotContains(t, string(data), "connection refused")
}

func TestGetDraft(t *testing.T) {
	t.Parallel()

	srv := newServer(t, newMemStore(sampleDrafts()...))

	resp, data := do(t, srv, http.MethodGet, "/admin/drafts/5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "AI <chips>", got["title"])
	require.Equal(t, "circuit board", got["imagePrompt"])
	require.Equal(t, "pending", got["status"])
}

func TestGetDraft_Errors(t *testing.T) {
	t.Parallel()

	srv := newServer(t, newMemStore(sampleDrafts()...))

	resp, data := do(t, srv, http.MethodGet, "/admin/drafts/abc", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid draft id", errorMessage(t, data))

	resp, data = do(t, srv, http.MethodGet, "/admin/drafts/999", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "draft not found", errorMessage(t, data))
}

func TestUpdateDraft(t *testing.T) {
	t.Parallel()

	store := newMemStore(sampleDrafts()...)
	srv := newServer(t, store)

	resp, data := do(t, srv, http.MethodPost, "/admin/drafts/5",
		`{"title": " New title ", "summary": "New summary", "body": "New body", "imagePrompt": ""}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.Draft
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "New title", got.Title)
	require.Nil(t, got.ImagePrompt)
	require.Equal(t, []string{"https://img/x.jpg"}, got.Images)
	require.Equal(t, model.DraftPending, got.Status)
}

func TestUpdateDraft_OmittedPromptIsKept(t *testing.T) {
	t.Parallel()

	store := newMemStore(sampleDrafts()...)
	srv := newServer(t, store)

	resp, data := do(t, srv, http.MethodPost, "/admin/drafts/5", `{"title": "Fixed typo", "summary": "s", "body": "b"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.Draft
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "Fixed typo", got.Title)
	require.NotNil(t, got.ImagePrompt)
	require.Equal(t, "circuit board", *got.ImagePrompt)
	require.Equal(t, "circuit board", store.drafts[5].Prompt())
}

func TestUpdateDraft_MissingTitleDoesNotTouchStore(t *testing.T) {
	t.Parallel()

	store := newMemStore(sampleDrafts()...)
	srv := newServer(t, store)

	resp, data := do(t, srv, http.MethodPost, "/admin/drafts/5", `{"summary": "s", "body": "b"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "title, summary and body are required", errorMessage(t, data))
	require.Zero(t, store.updates)
	require.Equal(t, "AI <chips>", store.drafts[5].Title)
}

func TestUpdateDraft_BadRequests(t *testing.T) {
	t.Parallel()

	store := newMemStore(sampleDrafts()...)
	srv := newServer(t, store)

	resp, _ := do(t, srv, http.MethodPost, "/admin/drafts/5", `{not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/admin/drafts/x", `{"title": "t", "summary": "s", "body": "b"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.Zero(t, store.updates)
}

func TestUpdateDraft_MissingID(t *testing.T) {
	t.Parallel()

	srv := newServer(t, newMemStore(sampleDrafts()...))

	resp, data := do(t, srv, http.MethodPost, "/admin/drafts/999", `{"title": "t", "summary": "s", "body": "b"}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "internal server error", errorMessage(t, data))
}

func TestApproveDraft(t *testing.T) {
	t.Parallel()

	store := newMemStore(sampleDrafts()...)
	srv := newServer(t, store)

	for range 2 {
		resp, data := do(t, srv, http.MethodPost, "/admin/drafts/5/approve", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got model.Draft
		require.NoError(t, json.Unmarshal(data, &got))
		require.Equal(t, model.DraftApproved, got.Status)
		require.Equal(t, []string{"https://img/x.jpg"}, got.Images)
	}
}

func TestApproveDraft_MissingID(t *testing.T) {
	t.Parallel()

	srv := newServer(t, newMemStore(sampleDrafts()...))

	resp, data := do(t, srv, http.MethodPost, "/admin/drafts/999/approve", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "internal server error", errorMessage(t, data))

	resp, _ = do(t, srv, http.MethodPost, "/admin/drafts/abc/approve", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newServer(t, newMemStore(sampleDrafts()...))

	cases := []struct {
		method, path, allow string
	}{
		{http.MethodDelete, "/admin/drafts", "GET"},
		{http.MethodPut, "/admin/drafts/5", "GET, POST"},
		{http.MethodGet, "/admin/drafts/5/approve", "POST"},
	}

	for _, tc := range cases {
		resp, data := do(t, srv, tc.method, tc.path, "")
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, tc.path)
		require.Equal(t, tc.allow, resp.Header.Get("Allow"), tc.path)
		require.Equal(t, "method not allowed", errorMessage(t, data))
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	ok := httptest.NewServer(server.New(newMemStore(), fakePinger{}).Routes())
	defer ok.Close()

	resp, _ := do(t, ok, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	down := httptest.NewServer(server.New(newMemStore(), fakePinger{err: errors.New("dial tcp")}).Routes())
	defer down.Close()

	resp, data := do(t, down, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, "database unavailable", errorMessage(t, data))
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	srv := newServer(t, newMemStore(sampleDrafts()...))

	do(t, srv, http.MethodGet, "/admin/drafts/5", "")

	resp, data := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(data), `autoblog_http_requests_total{method="GET",route="/admin/drafts/{id}",status="200"} 1`)
}

func TestUIList(t *testing.T) {
	t.Parallel()

	srv := newServer(t, newMemStore(sampleDrafts()...))

	resp, data := do(t, srv, http.MethodGet, "/ui/drafts", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Contains(t, string(data), `<a href="/ui/drafts/5">AI &lt;chips&gt;</a>`)
	require.Contains(t, string(data), `<a href="/ui/drafts/4">Older draft</a>`)
}

func TestUIDetail(t *testing.T) {
	t.Parallel()

	srv := newServer(t, newMemStore(sampleDrafts()...))

	resp, data := do(t, srv, http.MethodGet, "/ui/drafts/5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := string(data)
	require.Contains(t, page, `<form method="post" action="/ui/drafts/5">`)
	require.Contains(t, page, `value="circuit board"`)
	require.Contains(t, page, `<img src="https://img/x.jpg"`)
	require.Contains(t, page, "Save Changes")
	require.Contains(t, page, "Approve")

	resp, _ = do(t, srv, http.MethodGet, "/ui/drafts/999", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUISave(t *testing.T) {
	t.Parallel()

	store := newMemStore(sampleDrafts()...)
	srv := newServer(t, store)

	form := url.Values{"title": {"Edited"}, "summary": {"Sum"}, "body": {"Body"}, "imagePrompt": {"blue gold"}}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/ui/drafts/5", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := noRedirect(srv).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/ui/drafts/5", resp.Header.Get("Location"))
	require.Equal(t, "Edited", store.drafts[5].Title)
	require.Equal(t, "blue gold", store.drafts[5].Prompt())
}

func TestUISave_Invalid(t *testing.T) {
	t.Parallel()

	store := newMemStore(sampleDrafts()...)
	srv := newServer(t, store)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/ui/drafts/5", strings.NewReader("title=&summary=s&body=b"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := noRedirect(srv).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Zero(t, store.updates)
}

func TestUIApprove(t *testing.T) {
	t.Parallel()

	store := newMemStore(sampleDrafts()...)
	srv := newServer(t, store)

	resp, _ := do(t, srv, http.MethodPost, "/ui/drafts/5/approve", "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/ui/drafts", resp.Header.Get("Location"))
	require.Equal(t, model.DraftApproved, store.drafts[5].Status)

	resp, _ = do(t, srv, http.MethodPost, "/ui/drafts/999/approve", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
