package store

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/sweetshop/apiserver/types"
)

const sweetColumns = "id, name, category, price, quantity, created_at, updated_at"

// SweetRepository handles persistence for sweets, including the atomic
// stock mutations. All quantity changes are expressed as conditional
// single-statement updates so that concurrent purchases against the
// same sweet can never drive the stock negative.
type SweetRepository struct {
	db *sql.DB
}

func NewSweetRepository(db *sql.DB) *SweetRepository {
	return &SweetRepository{db: db}
}

func (r *SweetRepository) List(ctx context.Context) ([]types.Sweet, error) {
	const query = `
		SELECT ` + sweetColumns + `
		FROM sweets
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSweets(rows)
}

// Search matches term case-insensitively as a literal substring of the
// name or category. LIKE metacharacters in the term are escaped, so the
// term is never interpreted as a pattern. An empty term lists everything.
func (r *SweetRepository) Search(ctx context.Context, term string) ([]types.Sweet, error) {
	if strings.TrimSpace(term) == "" {
		return r.List(ctx)
	}

	const query = `
		SELECT ` + sweetColumns + `
		FROM sweets
		WHERE LOWER(name) LIKE '%' || $1 || '%' ESCAPE '\'
		   OR LOWER(category) LIKE '%' || $2 || '%' ESCAPE '\'
		ORDER BY id`
	pattern := escapeLike(strings.ToLower(term))
	rows, err := r.db.QueryContext(ctx, query, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSweets(rows)
}

func (r *SweetRepository) Get(ctx context.Context, id int64) (types.Sweet, error) {
	const query = `
		SELECT ` + sweetColumns + `
		FROM sweets
		WHERE id = $1`
	sweet, err := scanSweet(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Sweet{}, ErrNotFound
		}
		return types.Sweet{}, err
	}
	return sweet, nil
}

func (r *SweetRepository) Create(ctx context.Context, sweet types.Sweet) (types.Sweet, error) {
	now := time.Now()
	sweet.CreatedAt = now
	sweet.UpdatedAt = now

	const query = `
		INSERT INTO sweets (name, category, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		sweet.Name,
		sweet.Category,
		sweet.Price,
		sweet.Quantity,
		sweet.CreatedAt,
		sweet.UpdatedAt,
	).Scan(&sweet.ID); err != nil {
		return types.Sweet{}, err
	}
	return sweet, nil
}

func (r *SweetRepository) Update(ctx context.Context, sweet types.Sweet) (types.Sweet, error) {
	sweet.UpdatedAt = time.Now()

	const query = `
		UPDATE sweets
		SET name = $1,
			category = $2,
			price = $3,
			quantity = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		sweet.Name,
		sweet.Category,
		sweet.Price,
		sweet.Quantity,
		sweet.UpdatedAt,
		sweet.ID,
	)
	if err != nil {
		return types.Sweet{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Sweet{}, err
	}
	if affected == 0 {
		return types.Sweet{}, ErrNotFound
	}
	return sweet, nil
}

func (r *SweetRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM sweets WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock atomically takes one unit of stock. The availability
// check and the decrement are a single conditional UPDATE, so two
// concurrent calls can never both succeed on the last unit. Returns
// ErrOutOfStock when the quantity is already zero and ErrNotFound when
// the sweet does not exist.
func (r *SweetRepository) DecrementStock(ctx context.Context, id int64) (types.Sweet, error) {
	const query = `
		UPDATE sweets
		SET quantity = quantity - 1,
			updated_at = $1
		WHERE id = $2 AND quantity > 0
		RETURNING ` + sweetColumns
	sweet, err := scanSweet(r.db.QueryRowContext(ctx, query, time.Now(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.Get(ctx, id); getErr != nil {
				return types.Sweet{}, getErr
			}
			return types.Sweet{}, ErrOutOfStock
		}
		return types.Sweet{}, err
	}
	return sweet, nil
}

// IncrementStock atomically adds amount units of stock. The guard
// clause rejects additions that would overflow int64 instead of
// wrapping. Returns ErrNotFound when the sweet does not exist and
// ErrQuantityOverflow when the addition would overflow.
func (r *SweetRepository) IncrementStock(ctx context.Context, id int64, amount int64) (types.Sweet, error) {
	const query = `
		UPDATE sweets
		SET quantity = quantity + $1,
			updated_at = $2
		WHERE id = $3 AND quantity <= $4
		RETURNING ` + sweetColumns
	limit := math.MaxInt64 - amount
	sweet, err := scanSweet(r.db.QueryRowContext(ctx, query, amount, time.Now(), id, limit))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.Get(ctx, id); getErr != nil {
				return types.Sweet{}, getErr
			}
			return types.Sweet{}, ErrQuantityOverflow
		}
		return types.Sweet{}, err
	}
	return sweet, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSweet(row rowScanner) (types.Sweet, error) {
	var sweet types.Sweet
	err := row.Scan(
		&sweet.ID,
		&sweet.Name,
		&sweet.Category,
		&sweet.Price,
		&sweet.Quantity,
		&sweet.CreatedAt,
		&sweet.UpdatedAt,
	)
	return sweet, err
}

func scanSweets(rows *sql.Rows) ([]types.Sweet, error) {
	sweets := make([]types.Sweet, 0)
	for rows.Next() {
		sweet, err := scanSweet(rows)
		if err != nil {
			return nil, err
		}
		sweets = append(sweets, sweet)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sweets, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
