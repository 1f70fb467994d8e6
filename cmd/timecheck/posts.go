package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ericselin/timecheck"
	"github.com/ericselin/timecheck/pkg/timestamp"
	"github.com/ericselin/timecheck/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

type postsAPI struct {
	store store.Store
}

func (a postsAPI) routes(r chi.Router) {
	r.Get("/", a.list)
	r.Post("/", a.create)
	r.Get("/{id}", a.get)
	r.Put("/{id}", a.update)
	r.Delete("/{id}", a.delete)
}

type postInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type postOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	LastUpdated string `json:"lastUpdated"`
}

func toOutput(p store.Post, cfg timecheck.Config) postOutput {
	return postOutput{
		ID:          p.ID,
		Title:       p.Title,
		Body:        p.Body,
		LastUpdated: timestamp.Format(p.LastUpdated, cfg.DatetimeFormat, cfg.ReplaceWithZ),
	}
}

func (a postsAPI) list(w http.ResponseWriter, r *http.Request) {
	posts, err := a.store.All()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Could not list posts")
		http.Error(w, "Could not list posts", http.StatusInternalServerError)
		return
	}
	cfg := timecheck.FromRequest(r).Config()
	out := make([]postOutput, 0, len(posts))
	for _, p := range posts {
		out = append(out, toOutput(p, cfg))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a postsAPI) create(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	cfg := timecheck.FromRequest(r).Config()
	now, err := timestamp.Normalize(time.Now().UTC(), cfg.DatetimeFormat)
	if err != nil {
		timecheck.WriteError(w, err)
		return
	}
	p, err := a.store.Put(store.Post{Title: in.Title, Body: in.Body, LastUpdated: now})
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Could not create post")
		http.Error(w, "Could not create post", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toOutput(p, cfg))
}

// get sends the post unless the client is already up to date.
func (a postsAPI) get(w http.ResponseWriter, r *http.Request) {
	p, ok := a.find(w, r)
	if !ok {
		return
	}
	c := timecheck.FromRequest(r)
	if err := c.Check(p, timecheck.Overrides{}); err != nil {
		timecheck.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutput(p, c.Config()))
}

// update applies the client's data if it is newer than the stored post.
// The post takes the client's timestamp as its new last update.
func (a postsAPI) update(w http.ResponseWriter, r *http.Request) {
	p, ok := a.find(w, r)
	if !ok {
		return
	}
	c := timecheck.FromRequest(r)
	op, err := c.Op(p, timecheck.Overrides{})
	if err != nil {
		timecheck.WriteError(w, err)
		return
	}
	if err := c.Decide(op); err != nil {
		timecheck.WriteError(w, err)
		return
	}

	var in postInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	p.Title, p.Body = in.Title, in.Body
	if client, ok := op.Client(); ok {
		p.LastUpdated = client.UTC()
	} else {
		p.LastUpdated = time.Now().UTC()
	}
	if p, err = a.store.Put(p); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Could not update post")
		http.Error(w, "Could not update post", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toOutput(p, c.Config()))
}

func (a postsAPI) delete(w http.ResponseWriter, r *http.Request) {
	p, ok := a.find(w, r)
	if !ok {
		return
	}
	// DELETE has no timestamp semantics, the check only validates the post
	if err := timecheck.FromRequest(r).Check(p, timecheck.Overrides{}); err != nil {
		timecheck.WriteError(w, err)
		return
	}
	if err := a.store.Delete(p.ID); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Could not delete post")
		http.Error(w, "Could not delete post", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a postsAPI) find(w http.ResponseWriter, r *http.Request) (store.Post, bool) {
	p, err := a.store.Get(chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return p, false
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Could not get post")
		http.Error(w, "Could not get post", http.StatusInternalServerError)
		return p, false
	}
	return p, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
