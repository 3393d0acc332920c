package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/bookhub/internal/cache"
	"github.com/geocoder89/bookhub/internal/domain/book"
)

type BookStore interface {
	Create(ctx context.Context, req book.CreateBookRequest) (book.Book, error)
	GetByID(ctx context.Context, id int64) (book.Book, error)
	List(ctx context.Context) ([]book.Book, error)
	Update(ctx context.Context, id int64, req book.UpdateBookRequest) (book.Book, error)
	Delete(ctx context.Context, id int64) error
}

const booksListCacheKey = "books:list"

type BooksHandler struct {
	repo  BookStore
	cache *cache.Cache // optional list cache, nil disables it
}

func NewBooksHandler(repo BookStore, c *cache.Cache) *BooksHandler {
	return &BooksHandler{repo: repo, cache: c}
}

func bookID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid book id", nil)
		return 0, false
	}

	return id, true
}

func (h *BooksHandler) invalidateList() {
	if h.cache != nil {
		h.cache.Delete(booksListCacheKey)
	}
}

func (h *BooksHandler) Create(ctx *gin.Context) {
	var req book.CreateBookRequest

	if !BindJSON(ctx, &req) {
		return
	}

	b, err := h.repo.Create(ctx.Request.Context(), req)

	if err != nil {
		if errors.Is(err, book.ErrISBNTaken) {
			RespondError(ctx, http.StatusBadRequest, "isbn_taken", "ISBN is already registered", nil)
			return
		}
		RespondInternal(ctx, "Could not create book")
		return
	}

	h.invalidateList()

	ctx.JSON(http.StatusCreated, b)
}

func (h *BooksHandler) List(ctx *gin.Context) {
	if h.cache != nil {
		if v, ok := h.cache.Get(booksListCacheKey); ok {
			if books, ok := v.([]book.Book); ok {
				ctx.JSON(http.StatusOK, gin.H{
					"items": books,
					"count": len(books),
				})
				return
			}
		}
	}

	books, err := h.repo.List(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not list books")
		return
	}

	if h.cache != nil {
		h.cache.Set(booksListCacheKey, books)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": books,
		"count": len(books),
	})
}

func (h *BooksHandler) GetByID(ctx *gin.Context) {
	id, ok := bookID(ctx)

	if !ok {
		return
	}

	b, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			RespondNotFound(ctx, "Book not found")
			return
		}
		RespondInternal(ctx, "Could not fetch book")
		return
	}

	ctx.JSON(http.StatusOK, b)
}

func (h *BooksHandler) Update(ctx *gin.Context) {
	id, ok := bookID(ctx)

	if !ok {
		return
	}

	var req book.UpdateBookRequest

	if !BindJSON(ctx, &req) {
		return
	}

	b, err := h.repo.Update(ctx.Request.Context(), id, req)

	if err != nil {
		switch {
		case errors.Is(err, book.ErrNotFound):
			RespondNotFound(ctx, "Book not found")
		case errors.Is(err, book.ErrISBNTaken):
			RespondError(ctx, http.StatusBadRequest, "isbn_taken", "ISBN is already registered", nil)
		default:
			RespondInternal(ctx, "Could not update book")
		}
		return
	}

	h.invalidateList()

	ctx.JSON(http.StatusOK, b)
}

func (h *BooksHandler) Delete(ctx *gin.Context) {
	id, ok := bookID(ctx)

	if !ok {
		return
	}

	err := h.repo.Delete(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			RespondNotFound(ctx, "Book not found")
			return
		}
		RespondInternal(ctx, "Could not delete book")
		return
	}

	h.invalidateList()

	ctx.JSON(http.StatusOK, gin.H{"message": "Book deleted"})
}
