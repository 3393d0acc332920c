package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/bookhub/internal/cache"
	"github.com/geocoder89/bookhub/internal/domain/book"
	"github.com/geocoder89/bookhub/internal/http/handlers"
)

// Fake repository implementation of the handlers.BookStore interface

type fakeBooksRepo struct {
	createFn func(ctx context.Context, req book.CreateBookRequest) (book.Book, error)
	getFn    func(ctx context.Context, id int64) (book.Book, error)
	listFn   func(ctx context.Context) ([]book.Book, error)
	updateFn func(ctx context.Context, id int64, req book.UpdateBookRequest) (book.Book, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (f *fakeBooksRepo) Create(ctx context.Context, req book.CreateBookRequest) (book.Book, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return book.Book{}, nil
}

func (f *fakeBooksRepo) GetByID(ctx context.Context, id int64) (book.Book, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return book.Book{}, nil
}

func (f *fakeBooksRepo) List(ctx context.Context) ([]book.Book, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []book.Book{}, nil
}

func (f *fakeBooksRepo) Update(ctx context.Context, id int64, req book.UpdateBookRequest) (book.Book, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return book.Book{}, nil
}

func (f *fakeBooksRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func sampleBook(id int64, isbn string) book.Book {
	now := time.Now().UTC()
	year := 1985

	return book.Book{
		ID:        id,
		Title:     "La casa de los espíritus",
		Author:    "Isabel Allende",
		Year:      &year,
		ISBN:      isbn,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateBookHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeBooksRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"title":"La casa de los espíritus","author":"Isabel Allende","year":1985,"isbn":"111"}`,
			repoSetUp: func(f *fakeBooksRepo) {
				f.createFn = func(ctx context.Context, req book.CreateBookRequest) (book.Book, error) {
					return sampleBook(1, req.ISBN), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "duplicate_isbn",
			body: `{"title":"La casa de los espíritus","author":"Isabel Allende","isbn":"111"}`,
			repoSetUp: func(f *fakeBooksRepo) {
				f.createFn = func(ctx context.Context, req book.CreateBookRequest) (book.Book, error) {
					return book.Book{}, book.ErrISBNTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "validation_error",
			body: `{"title":""}`, // indicating of an invalid or incomplete request payload
			repoSetUp: func(f *fakeBooksRepo) {
				// since it is an invalid request the repo should not be called.
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"title":"La casa de los espíritus","author":"Isabel Allende","isbn":"111"}`,
			repoSetUp: func(f *fakeBooksRepo) {
				f.createFn = func(ctx context.Context, req book.CreateBookRequest) (book.Book, error) {
					return book.Book{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeBooksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewBooksHandler(repo, nil)

			r := setupRouter(http.MethodPost, "/books", h.Create)

			w := doJSON(t, r, http.MethodPost, "/books", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestGetBookHandler(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		repoSetUp      func(*fakeBooksRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			path: "/books/1",
			repoSetUp: func(f *fakeBooksRepo) {
				f.getFn = func(ctx context.Context, id int64) (book.Book, error) {
					return sampleBook(id, "111"), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			path: "/books/42",
			repoSetUp: func(f *fakeBooksRepo) {
				f.getFn = func(ctx context.Context, id int64) (book.Book, error) {
					return book.Book{}, book.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "bad_id",
			path:           "/books/abc",
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeBooksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewBooksHandler(repo, nil)

			r := setupRouter(http.MethodGet, "/books/:id", h.GetByID)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListBooksHandler(t *testing.T) {
	repo := &fakeBooksRepo{
		listFn: func(ctx context.Context) ([]book.Book, error) {
			return []book.Book{sampleBook(1, "111"), sampleBook(2, "222")}, nil
		},
	}

	h := handlers.NewBooksHandler(repo, nil)

	r := setupRouter(http.MethodGet, "/books", h.List)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []book.Book `json:"items"`
		Count int         `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}

	if resp.Count != 2 || len(resp.Items) != 2 {
		t.Errorf("count = %d items = %d, want 2 each", resp.Count, len(resp.Items))
	}
}

func TestListBooksCached(t *testing.T) {
	calls := 0

	repo := &fakeBooksRepo{
		listFn: func(ctx context.Context) ([]book.Book, error) {
			calls++
			return []book.Book{sampleBook(1, "111")}, nil
		},
	}

	h := handlers.NewBooksHandler(repo, cache.New(time.Minute))

	r := setupRouter(http.MethodGet, "/books", h.List)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d", i, w.Code)
		}
	}

	if calls != 1 {
		t.Errorf("repo List called %d times, want 1 (cached)", calls)
	}
}

func TestUpdateBookHandler(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		repoSetUp      func(*fakeBooksRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			path: "/books/1",
			body: `{"title":"Updated","author":"Isabel Allende","isbn":"111"}`,
			repoSetUp: func(f *fakeBooksRepo) {
				f.updateFn = func(ctx context.Context, id int64, req book.UpdateBookRequest) (book.Book, error) {
					b := sampleBook(id, req.ISBN)
					b.Title = req.Title
					return b, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			path: "/books/42",
			body: `{"title":"Updated","author":"Isabel Allende","isbn":"111"}`,
			repoSetUp: func(f *fakeBooksRepo) {
				f.updateFn = func(ctx context.Context, id int64, req book.UpdateBookRequest) (book.Book, error) {
					return book.Book{}, book.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "isbn_conflict",
			path: "/books/1",
			body: `{"title":"Updated","author":"Isabel Allende","isbn":"222"}`,
			repoSetUp: func(f *fakeBooksRepo) {
				f.updateFn = func(ctx context.Context, id int64, req book.UpdateBookRequest) (book.Book, error) {
					return book.Book{}, book.ErrISBNTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeBooksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewBooksHandler(repo, nil)

			r := setupRouter(http.MethodPut, "/books/:id", h.Update)

			w := doJSON(t, r, http.MethodPut, tt.path, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteBookHandler(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		repoSetUp      func(*fakeBooksRepo)
		wantStatusCode int
	}{
		{
			name:           "success",
			path:           "/books/1",
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			path: "/books/42",
			repoSetUp: func(f *fakeBooksRepo) {
				f.deleteFn = func(ctx context.Context, id int64) error {
					return book.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeBooksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewBooksHandler(repo, nil)

			r := setupRouter(http.MethodDelete, "/books/:id", h.Delete)

			req := httptest.NewRequest(http.MethodDelete, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
