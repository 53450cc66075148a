package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/abgdnv/inventory/internal/catalog"
	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	productsTable = "productos"
	// PostgreSQL error codes for unique and check constraint violations.
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

var productColumns = []string{
	"id", "nombre", "descripcion", "codigo_barras", "precio", "stock",
	"categoria", "imagen", "fecha_creacion", "fecha_actualizacion",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// likeEscaper escapes LIKE wildcards so user input is matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
	}
}

// FindAll counts the products matching the filter and fetches the requested page.
// Both queries run in one read-only snapshot.
func (p *PgStore) FindAll(ctx context.Context, filter catalog.Filter, page catalog.Page) ([]catalog.Product, int, error) {
	countQuery, countArgs, err := applyFilter(psql.Select("COUNT(*)").From(productsTable), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	listQuery, listArgs, err := applyFilter(psql.Select(productColumns...).From(productsTable), filter).
		OrderBy("id").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	var total int64
	var products []catalog.Product
	err = p.withTransaction(ctx, readOnly, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		rows, err := tx.Query(ctx, listQuery, listArgs...)
		if err != nil {
			return fmt.Errorf("failed to query products: %w", err)
		}
		products, err = pgx.CollectRows(rows, scanProduct)
		if err != nil {
			return fmt.Errorf("failed to scan products: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find all products: %w", err)
	}
	return products, int(total), nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	product, err := p.findOne(ctx, sq.Eq{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindByBarcode retrieves a product by its barcode.
// Returns ErrProductNotFound if no product carries the barcode.
func (p *PgStore) FindByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	product, err := p.findOne(ctx, sq.Eq{"codigo_barras": barcode})
	if err != nil {
		return nil, fmt.Errorf("failed to find product by barcode: %w", err)
	}
	return product, nil
}

// Create adds a new product to the system.
// Returns ErrDuplicateBarcode if the barcode is already taken.
func (p *PgStore) Create(ctx context.Context, product catalog.Product) (*catalog.Product, error) {
	query, args, err := psql.Insert(productsTable).
		SetMap(map[string]any{
			"nombre":              product.Name,
			"descripcion":         product.Description,
			"codigo_barras":       product.Barcode,
			"precio":              catalog.RoundPrice(product.Price),
			"stock":               product.Stock,
			"categoria":           product.Category,
			"imagen":              product.Image,
			"fecha_creacion":      product.CreatedAt,
			"fecha_actualizacion": product.UpdatedAt,
		}).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", translate(err))
	}
	return &created, nil
}

// Update writes only the fields present in the patch.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id int64, patch catalog.Patch, now time.Time) (*catalog.Product, error) {
	if patch.IsEmpty() {
		return p.FindByID(ctx, id)
	}
	query, args, err := psql.Update(productsTable).
		SetMap(patchToMap(patch, now)).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", translate(err))
	}
	return &updated, nil
}

// DeleteByID removes a product by its unique identifier and returns the removed row.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) (*catalog.Product, error) {
	query, args, err := psql.Delete(productsTable).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete query: %w", err)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product by ID: %w", err)
	}
	deleted, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product by ID: %w", translate(err))
	}
	return &deleted, nil
}

// Categories counts the products per category, ordered by first appearance.
func (p *PgStore) Categories(ctx context.Context) ([]catalog.CategoryCount, error) {
	query, args, err := psql.Select("categoria", "COUNT(*)").
		From(productsTable).
		GroupBy("categoria").
		OrderBy("MIN(id)").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build categories query: %w", err)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.CategoryCount, error) {
		var c catalog.CategoryCount
		var count int64
		err := row.Scan(&c.Name, &count)
		c.Count = int(count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return counts, nil
}

// Stats computes the inventory summary in a single read-only snapshot.
func (p *PgStore) Stats(ctx context.Context) (catalog.Stats, error) {
	summaryQuery, _, err := psql.Select(
		"COUNT(*)",
		"COALESCE(SUM(stock), 0)",
		"COALESCE(ROUND(AVG(precio), 2), 0)",
		fmt.Sprintf("COUNT(*) FILTER (WHERE stock < %d)", catalog.LowStockThreshold),
		"COUNT(DISTINCT categoria)",
	).From(productsTable).ToSql()
	if err != nil {
		return catalog.Stats{}, fmt.Errorf("failed to build stats query: %w", err)
	}

	var stats catalog.Stats
	err = p.withTransaction(ctx, readOnly, func(tx pgx.Tx) error {
		var total, totalStock, lowStock, categories int64
		var average decimal.Decimal
		if err := tx.QueryRow(ctx, summaryQuery).Scan(&total, &totalStock, &average, &lowStock, &categories); err != nil {
			return fmt.Errorf("failed to query stats: %w", err)
		}
		stats = catalog.Stats{
			TotalProducts:   int(total),
			TotalStock:      int(totalStock),
			AveragePrice:    catalog.RoundPrice(average),
			LowStock:        int(lowStock),
			TotalCategories: int(categories),
		}
		if total == 0 {
			return nil
		}
		var err error
		if stats.MostExpensive, err = extremePrice(ctx, tx, "precio DESC"); err != nil {
			return err
		}
		if stats.Cheapest, err = extremePrice(ctx, tx, "precio ASC"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return catalog.Stats{}, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

// extremePrice returns the first product in the given price order, lowest ID first on ties.
func extremePrice(ctx context.Context, tx pgx.Tx, order string) (*catalog.PriceRef, error) {
	query, _, err := psql.Select("id", "nombre", "precio").
		From(productsTable).
		OrderBy(order, "id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build price query: %w", err)
	}
	var ref catalog.PriceRef
	if err := tx.QueryRow(ctx, query).Scan(&ref.ID, &ref.Name, &ref.Price); err != nil {
		return nil, fmt.Errorf("failed to query price extreme: %w", err)
	}
	return &ref, nil
}

func (p *PgStore) findOne(ctx context.Context, where sq.Sqlizer) (*catalog.Product, error) {
	query, args, err := psql.Select(productColumns...).From(productsTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

var readOnly = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// withTransaction runs fn inside a transaction and commits it when fn succeeds.
func (p *PgStore) withTransaction(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("failed to rollback transaction: %w", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// applyFilter adds a WHERE clause for every supplied criterion.
func applyFilter(q sq.SelectBuilder, f catalog.Filter) sq.SelectBuilder {
	if f.Category != "" {
		q = q.Where(sq.ILike{"categoria": likePattern(f.Category)})
	}
	if f.PriceMin != nil {
		q = q.Where(sq.GtOrEq{"precio": *f.PriceMin})
	}
	if f.PriceMax != nil {
		q = q.Where(sq.LtOrEq{"precio": *f.PriceMax})
	}
	if f.StockMin != nil {
		q = q.Where(sq.GtOrEq{"stock": *f.StockMin})
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.Where(sq.Or{
			sq.ILike{"nombre": pattern},
			sq.ILike{"descripcion": pattern},
		})
	}
	return q
}

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// patchToMap converts the supplied patch fields into column assignments.
func patchToMap(patch catalog.Patch, now time.Time) map[string]any {
	set := map[string]any{"fecha_actualizacion": now}
	if patch.Name != nil {
		set["nombre"] = *patch.Name
	}
	if patch.Description != nil {
		set["descripcion"] = *patch.Description
	}
	if patch.Barcode != nil {
		set["codigo_barras"] = *patch.Barcode
	}
	if patch.Price != nil {
		set["precio"] = catalog.RoundPrice(*patch.Price)
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Category != nil {
		set["categoria"] = *patch.Category
	}
	if patch.Image != nil {
		if patch.ClearsImage() {
			set["imagen"] = nil
		} else {
			set["imagen"] = *patch.Image
		}
	}
	return set
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Barcode,
		&p.Price,
		&p.Stock,
		&p.Category,
		&p.Image,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, err
}

// translate maps driver errors onto the store's sentinel errors.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return perrors.ErrProductNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return perrors.ErrDuplicateBarcode
		case checkViolation:
			return fmt.Errorf("%w: %s", perrors.ErrInvalidProduct, pgErr.ConstraintName)
		}
	}
	return err
}
