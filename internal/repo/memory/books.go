package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/bookhub/internal/domain/book"
)

type BooksRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]book.Book
}

func NewBooksRepo() *BooksRepo {
	return &BooksRepo{
		nextID: 1,
		items:  make(map[int64]book.Book),
	}
}

func (r *BooksRepo) isbnTaken(isbn string, excludeID int64) bool {
	for _, b := range r.items {
		if b.ISBN == isbn && b.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *BooksRepo) Create(ctx context.Context, req book.CreateBookRequest) (book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isbnTaken(req.ISBN, 0) {
		return book.Book{}, book.ErrISBNTaken
	}

	now := time.Now().UTC()

	b := book.Book{
		ID:          r.nextID,
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Year:        req.Year,
		ISBN:        req.ISBN,
		Available:   req.IsAvailable(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.nextID++
	r.items[b.ID] = b

	return b, nil
}

func (r *BooksRepo) GetByID(ctx context.Context, id int64) (book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[id]

	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (r *BooksRepo) List(ctx context.Context) ([]book.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]book.Book, 0, len(r.items))

	for _, b := range r.items {
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *BooksRepo) Update(ctx context.Context, id int64, req book.UpdateBookRequest) (book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.items[id]

	if !ok {
		return book.Book{}, book.ErrNotFound
	}

	if r.isbnTaken(req.ISBN, id) {
		return book.Book{}, book.ErrISBNTaken
	}

	b.Title = req.Title
	b.Author = req.Author
	b.Description = req.Description
	b.Year = req.Year
	b.ISBN = req.ISBN
	b.Available = req.IsAvailable()
	b.UpdatedAt = time.Now().UTC()

	r.items[id] = b

	return b, nil
}

func (r *BooksRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return book.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
