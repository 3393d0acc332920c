package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/bookhub/internal/domain/book"
	"github.com/geocoder89/bookhub/internal/observability"
)

type BooksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewBooksRepo(pool *pgxpool.Pool, prom *observability.Prom) *BooksRepo {
	return &BooksRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *BooksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *BooksRepo) Create(ctx context.Context, req book.CreateBookRequest) (book.Book, error) {
	var b book.Book

	err := r.observe("books.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO books (title, author, description, year, isbn, available)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, title, author, COALESCE(description, ''), year, isbn, available, created_at, updated_at`,
			req.Title, req.Author, nullIfEmpty(req.Description), req.Year, req.ISBN, req.IsAvailable(),
		).Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Year, &b.ISBN, &b.Available, &b.CreatedAt, &b.UpdatedAt)
	})

	if err != nil {
		if isUniqueViolation(err) {
			return book.Book{}, book.ErrISBNTaken
		}
		return book.Book{}, err
	}

	return b, nil
}

func (r *BooksRepo) GetByID(ctx context.Context, id int64) (book.Book, error) {
	var b book.Book

	err := r.observe("books.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, author, COALESCE(description, ''), year, isbn, available, created_at, updated_at
			 FROM books
			 WHERE id = $1`,
			id,
		).Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Year, &b.ISBN, &b.Available, &b.CreatedAt, &b.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}

	return b, nil
}

func (r *BooksRepo) List(ctx context.Context) (books []book.Book, err error) {
	var rows pgx.Rows

	err = r.observe("books.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, title, author, COALESCE(description, ''), year, isbn, available, created_at, updated_at
			 FROM books
			 ORDER BY id ASC`,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	books = make([]book.Book, 0)

	for rows.Next() {
		var b book.Book

		e := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Year, &b.ISBN, &b.Available, &b.CreatedAt, &b.UpdatedAt)

		if e != nil {
			err = e
			return
		}
		books = append(books, b)
	}

	err = rows.Err()

	return
}

func (r *BooksRepo) Update(ctx context.Context, id int64, req book.UpdateBookRequest) (book.Book, error) {
	var b book.Book

	err := r.observe("books.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE books
				SET title = $2,
						author = $3,
						description = $4,
						year = $5,
						isbn = $6,
						available = $7,
						updated_at = NOW()
			WHERE id = $1
			RETURNING id, title, author, COALESCE(description, ''), year, isbn, available, created_at, updated_at`,
			id,
			req.Title,
			req.Author,
			nullIfEmpty(req.Description),
			req.Year,
			req.ISBN,
			req.IsAvailable(),
		).Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Year, &b.ISBN, &b.Available, &b.CreatedAt, &b.UpdatedAt)
	})

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		if isUniqueViolation(err) {
			return book.Book{}, book.ErrISBNTaken
		}
		return book.Book{}, err
	}

	return b, nil
}

func (r *BooksRepo) Delete(ctx context.Context, id int64) error {
	var tag pgconn.CommandTag

	err := r.observe("books.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return book.ErrNotFound
	}

	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
