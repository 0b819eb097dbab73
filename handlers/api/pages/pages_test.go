package pages

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"notion-mini/core"
	"notion-mini/ids"
	pagestore "notion-mini/pages"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *pagestore.Store) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := pagestore.Open(context.Background(), nil,
		pagestore.WithIDGenerator(&ids.Sequence{Prefix: "id-"}),
		pagestore.WithLogger(log),
	)
	r := chi.NewRouter()
	r.Mount("/api/v1/pages", Routes(store))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestListAndGet(t *testing.T) {
	srv, store := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/pages", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []core.Page
	decodeBody(t, resp, &list)
	assert.Equal(t, store.Pages(), list)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/pages/"+list[0].ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page core.Page
	decodeBody(t, resp, &page)
	assert.Equal(t, "Getting started", page.Title)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/pages/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateAndFirst(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/pages", `{"title":"Notes"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var page core.Page
	decodeBody(t, resp, &page)
	assert.Equal(t, "Notes", page.Title)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/pages/first", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first FirstPageResponse
	decodeBody(t, resp, &first)
	assert.Equal(t, page.ID, first.ID)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/pages", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &page)
	assert.Equal(t, "Untitled", page.Title)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/pages", `{}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &page)
	assert.Equal(t, "Untitled", page.Title)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/pages", `{"title":""}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	page = core.Page{}
	decodeBody(t, resp, &page)
	assert.Equal(t, "", page.Title)
	assert.Equal(t, "", page.Blocks[0].Text)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/pages", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFirstOnEmptyStore(t *testing.T) {
	srv, store := newTestServer(t)
	id, _ := store.FirstPageID()
	store.DeletePage(context.Background(), id)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/pages/first", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRenameAndDelete(t *testing.T) {
	srv, store := newTestServer(t)
	id, _ := store.FirstPageID()

	resp := do(t, http.MethodPatch, srv.URL+"/api/v1/pages/"+id, `{"title":"Renamed"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	page, _ := store.FindPage(id)
	assert.Equal(t, "Renamed", page.Title)

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/pages/missing", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, store.Pages(), 1)

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/pages/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, store.Pages())
}

func TestAddBlock(t *testing.T) {
	srv, store := newTestServer(t)
	id, _ := store.FirstPageID()
	page, _ := store.FindPage(id)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/pages/"+id+"/blocks", `{"type":"todo","after":"`+page.Blocks[0].ID+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var block core.Block
	decodeBody(t, resp, &block)
	assert.Equal(t, core.BlockTodo, block.Type)

	page, _ = store.FindPage(id)
	assert.Equal(t, block.ID, page.Blocks[1].ID)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/pages/"+id+"/blocks", `{"type":"quote"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/pages/missing/blocks", `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateDeleteAndMoveBlock(t *testing.T) {
	srv, store := newTestServer(t)
	id, _ := store.FirstPageID()
	page, _ := store.FindPage(id)
	blocksURL := srv.URL + "/api/v1/pages/" + id + "/blocks/"

	resp := do(t, http.MethodPatch, blocksURL+page.Blocks[4].ID, `{"checked":true,"text":"Done"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	updated, _ := store.FindPage(id)
	assert.Equal(t, "Done", updated.Blocks[4].Text)
	require.NotNil(t, updated.Blocks[4].Checked)
	assert.True(t, *updated.Blocks[4].Checked)

	resp = do(t, http.MethodPatch, blocksURL+page.Blocks[4].ID, `{"type":"quote"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, blocksURL+page.Blocks[1].ID+"/move", `{"direction":"up"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	moved, _ := store.FindPage(id)
	assert.Equal(t, page.Blocks[1].ID, moved.Blocks[0].ID)

	resp = do(t, http.MethodPost, blocksURL+page.Blocks[1].ID+"/move", `{"direction":"left"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodDelete, blocksURL+page.Blocks[2].ID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	deleted, _ := store.FindPage(id)
	assert.Len(t, deleted.Blocks, 4)
}
