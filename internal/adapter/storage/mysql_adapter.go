package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rafaelpierri/andela-assessment/internal/core/domain"
	"github.com/rafaelpierri/andela-assessment/internal/port"
)

const productColumns = "id, name, description, category, price, stock, created_at, updated_at"

// MySQLAdapter backs the product repository with a relational table,
// using updated_at as the optimistic locking version token.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	result, err := m.db.ExecContext(ctx, `
		INSERT INTO products (name, description, category, price, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		product.Name, product.Description, product.Category,
		product.Price, product.Stock, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	created := *product
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

func (m *MySQLAdapter) FindOne(ctx context.Context, id int64) (*domain.Product, error) {
	row := m.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{ProductIDs: []int64{id}}
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return product, nil
}

func (m *MySQLAdapter) FindMany(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := m.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (m *MySQLAdapter) FindAll(ctx context.Context, query port.ListQuery) ([]*domain.Product, domain.Pagination, error) {
	where, args := buildFilter(query)

	var total int
	if err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("count products: %w", err)
	}

	direction := "ASC"
	if query.Order == port.SortDesc {
		direction = "DESC"
	}

	offset := query.PageSize * (query.Page - 1)
	rows, err := m.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products`+where+
			` ORDER BY name `+direction+` LIMIT ? OFFSET ?`,
		append(args, query.PageSize, offset)...)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Pagination{}, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("iterate products: %w", err)
	}

	return products, domain.NewPagination(query.Page, query.PageSize, total), nil
}

// Update writes the batch inside one transaction. Each row write is
// conditioned on the updated_at value the caller last read; zero rows
// affected means another writer got there first (or the row is gone) and the
// whole transaction rolls back, so no partial batch ever commits. The new
// token stays strictly greater than the prior one even when the clock has
// not advanced past it.
func (m *MySQLAdapter) Update(ctx context.Context, products []*domain.Product) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stamps := make([]time.Time, len(products))
	for i, product := range products {
		next := time.Now().UTC().Truncate(time.Microsecond)
		if !next.After(product.UpdatedAt) {
			next = product.UpdatedAt.Add(time.Microsecond)
		}
		stamps[i] = next

		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET name = ?, description = ?, category = ?, price = ?, stock = ?, updated_at = ?
			WHERE id = ? AND updated_at = ?`,
			product.Name, product.Description, product.Category,
			product.Price, product.Stock, next,
			product.ID, product.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update product %d: %w", product.ID, err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return &domain.VersionConflictError{ProductID: product.ID}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	for i, product := range products {
		product.UpdatedAt = stamps[i]
	}
	return nil
}

func buildFilter(query port.ListQuery) (string, []any) {
	var conds []string
	var args []any

	if query.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, query.Category)
	}
	if query.NamePrefix != "" {
		conds = append(conds, "name LIKE ?")
		args = append(args, escapeLike(query.NamePrefix)+"%")
	}
	if query.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *query.MinPrice)
	}
	if query.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *query.MaxPrice)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*domain.Product, error) {
	var p domain.Product
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Category,
		&p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
