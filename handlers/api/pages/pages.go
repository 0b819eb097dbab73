package pages

import (
	"context"
	"errors"
	"io"
	"net/http"
	"notion-mini/core"
	pagestore "notion-mini/pages"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// Store is the part of *pages.Store the HTTP API drives.
type Store interface {
	Pages() []core.Page
	FindPage(id string) (core.Page, bool)
	FirstPageID() (string, bool)
	CreatePage(ctx context.Context, title string) core.Page
	DeletePage(ctx context.Context, id string)
	RenamePage(ctx context.Context, id, title string)
	AddBlock(ctx context.Context, pageID string, blockType core.BlockType, afterBlockID string) *core.Block
	UpdateBlock(ctx context.Context, pageID, blockID string, patch core.BlockPatch)
	DeleteBlock(ctx context.Context, pageID, blockID string)
	MoveBlock(ctx context.Context, pageID, blockID string, direction core.Direction)
}

type (
	// CreatePageRequest.Title is nil when the field is omitted, which
	// selects the default title.
	CreatePageRequest struct {
		Title *string `json:"title"`
	}
	PageTitleRequest struct {
		Title string `json:"title"`
	}
	AddBlockRequest struct {
		Type  core.BlockType `json:"type"`
		After string         `json:"after"`
	}
	MoveBlockRequest struct {
		Direction core.Direction `json:"direction"`
	}
	FirstPageResponse struct {
		ID string `json:"id"`
	}
	ErrorResponse struct {
		Error string `json:"error"`
	}
)

// Routes mounts the page API. Mutations addressing a missing page or block
// succeed without effect, like the store itself.
func Routes(store Store) chi.Router {
	r := chi.NewRouter()
	r.Get("/", HandleList(store))
	r.Post("/", HandleCreate(store))
	r.Get("/first", HandleFirst(store))
	r.Route("/{pageID}", func(r chi.Router) {
		r.Get("/", HandleGet(store))
		r.Patch("/", HandleRename(store))
		r.Delete("/", HandleDelete(store))
		r.Post("/blocks", HandleAddBlock(store))
		r.Route("/blocks/{blockID}", func(r chi.Router) {
			r.Patch("/", HandleUpdateBlock(store))
			r.Delete("/", HandleDeleteBlock(store))
			r.Post("/move", HandleMoveBlock(store))
		})
	})
	return r
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

// decode reads a JSON body; an empty body leaves v at its zero value.
func decode(r *http.Request, v interface{}) error {
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		logrus.WithField("error", err).Debug("Invalid request body")
		return err
	}
	return nil
}

func HandleList(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, store.Pages())
	}
}

func HandleCreate(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &CreatePageRequest{}
		if err := decode(r, data); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid body")
			return
		}
		title := pagestore.DefaultTitle
		if data.Title != nil {
			title = *data.Title
		}
		page := store.CreatePage(r.Context(), title)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, page)
	}
}

func HandleFirst(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := store.FirstPageID()
		if !ok {
			respondError(w, r, http.StatusNotFound, "no pages")
			return
		}
		render.JSON(w, r, FirstPageResponse{ID: id})
	}
}

func HandleGet(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := store.FindPage(chi.URLParam(r, "pageID"))
		if !ok {
			respondError(w, r, http.StatusNotFound, "not found")
			return
		}
		render.JSON(w, r, page)
	}
}

func HandleRename(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &PageTitleRequest{}
		if err := decode(r, data); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid body")
			return
		}
		store.RenamePage(r.Context(), chi.URLParam(r, "pageID"), data.Title)
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleDelete(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.DeletePage(r.Context(), chi.URLParam(r, "pageID"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleAddBlock(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &AddBlockRequest{}
		if err := decode(r, data); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid body")
			return
		}
		if data.Type != "" && !data.Type.Valid() {
			respondError(w, r, http.StatusBadRequest, "unknown block type")
			return
		}
		block := store.AddBlock(r.Context(), chi.URLParam(r, "pageID"), data.Type, data.After)
		if block == nil {
			respondError(w, r, http.StatusNotFound, "not found")
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, block)
	}
}

func HandleUpdateBlock(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patch := core.BlockPatch{}
		if err := decode(r, &patch); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid body")
			return
		}
		if patch.Type != nil && !patch.Type.Valid() {
			respondError(w, r, http.StatusBadRequest, "unknown block type")
			return
		}
		store.UpdateBlock(r.Context(), chi.URLParam(r, "pageID"), chi.URLParam(r, "blockID"), patch)
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleDeleteBlock(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.DeleteBlock(r.Context(), chi.URLParam(r, "pageID"), chi.URLParam(r, "blockID"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleMoveBlock(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &MoveBlockRequest{}
		if err := decode(r, data); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid body")
			return
		}
		if !data.Direction.Valid() {
			respondError(w, r, http.StatusBadRequest, "direction must be up or down")
			return
		}
		store.MoveBlock(r.Context(), chi.URLParam(r, "pageID"), chi.URLParam(r, "blockID"), data.Direction)
		w.WriteHeader(http.StatusNoContent)
	}
}
