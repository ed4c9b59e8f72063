package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/blog-api/internal/api/middleware"
	"github.com/inkpost/blog-api/internal/core/domain"
	"github.com/inkpost/blog-api/internal/core/ports"
)

type stubPostService struct {
	posts     []domain.Post
	created   *ports.PostInput
	author    domain.Identity
	updatedID string
	deletedID string
	err       error
}

func (s *stubPostService) List(context.Context) ([]domain.Post, error) {
	return s.posts, s.err
}

func (s *stubPostService) Get(_ context.Context, id string) (*domain.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Post{ID: id}, nil
}

func (s *stubPostService) Create(_ context.Context, author domain.Identity, in ports.PostInput) (*domain.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created, s.author = &in, author
	return &domain.Post{ID: "p1", Title: in.Title, Content: in.Content, Author: domain.Author{ID: author.UserID, Name: "A"}}, nil
}

func (s *stubPostService) Update(_ context.Context, id string, in ports.PostInput) (*domain.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updatedID = id
	return &domain.Post{ID: id, Title: in.Title, Content: in.Content}, nil
}

func (s *stubPostService) Delete(_ context.Context, id string) error {
	s.deletedID = id
	return s.err
}

func TestPostHandler_List_EmptyIsArray(t *testing.T) {
	e := newTestEcho()
	h := NewPostHandler(&stubPostService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/posts", nil), rec)

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPostHandler_List(t *testing.T) {
	e := newTestEcho()
	h := NewPostHandler(&stubPostService{posts: []domain.Post{
		{ID: "p2", Title: "new", Author: domain.Author{ID: "u1", Name: "A"}},
		{ID: "p1", Title: "old", Author: domain.Author{ID: "u1", Name: "A"}},
	}})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/posts", nil), rec)
	require.NoError(t, h.List(c))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0]["_id"])
	assert.Equal(t, "A", got[0]["author"].(map[string]any)["name"])
}

func TestPostHandler_Create_StampsAuthor(t *testing.T) {
	e := newTestEcho()
	svc := &stubPostService{}
	h := NewPostHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/posts", `{"title":"Hi","content":"World"}`), rec)
	c.Set(middleware.IdentityKey, domain.Identity{UserID: "u1", Role: domain.RoleAdmin})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", svc.author.UserID)
	assert.Equal(t, "Hi", svc.created.Title)
	assert.Contains(t, rec.Body.String(), `"name":"A"`)
}

func TestPostHandler_Create_RequiresIdentity(t *testing.T) {
	e := newTestEcho()
	h := NewPostHandler(&stubPostService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/posts", `{"title":"Hi","content":"World"}`), httptest.NewRecorder())
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, h.Create(c)))
}

func TestPostHandler_Create_Validation(t *testing.T) {
	e := newTestEcho()
	h := NewPostHandler(&stubPostService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/posts", `{"title":"Hi"}`), httptest.NewRecorder())
	c.Set(middleware.IdentityKey, domain.Identity{UserID: "u1", Role: domain.RoleAdmin})

	err := h.Create(c)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualError(t, err, "content is required")
}

func TestPostHandler_Update(t *testing.T) {
	e := newTestEcho()
	svc := &stubPostService{}
	h := NewPostHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/posts/p9", `{"title":"t","content":"c"}`), rec)
	c.SetPath("/api/posts/:id")
	c.SetParamNames("id")
	c.SetParamValues("p9")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p9", svc.updatedID)
}

func TestPostHandler_Delete(t *testing.T) {
	e := newTestEcho()
	svc := &stubPostService{}
	h := NewPostHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/posts/p9", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("p9")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, "p9", svc.deletedID)
	assert.JSONEq(t, `{"message":"Post deleted"}`, rec.Body.String())
}

func TestPostHandler_PropagatesNotFound(t *testing.T) {
	e := newTestEcho()
	h := NewPostHandler(&stubPostService{err: domain.ErrPostNotFound})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/posts/x", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("x")

	assert.True(t, errors.Is(h.Get(c), domain.ErrPostNotFound))
}
