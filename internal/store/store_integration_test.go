package store

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/inventory/internal/catalog"
	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/migrations"
	"github.com/abgdnv/inventory/pkg/bootstrap"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "INVENTORY_SKIP_INTEGRATION_TESTS"

// ProductStoreSuite is a test suite for the PostgreSQL ProductStore implementation.
type ProductStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       ProductStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts a PostgreSQL container and applies the embedded migrations.
func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// 1. Start a PostgreSQL container and wait until it accepts connections.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("inventory"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Connect
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = bootstrap.NewDbPool(s.ctx, connStr, 30*time.Second)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	// 3. Migrate
	require.NoError(s.T(), bootstrap.RunMigrations(migrations.FS, connStr), "Failed to apply migrations")
	s.logger.Info("Migrations applied for integration tests")

	s.store = NewPgStore(s.dbPool)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest truncates the table and loads the sample products.
func (s *ProductStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE productos RESTART IDENTITY")
	require.NoError(s.T(), err, "Failed to truncate productos table")
	inserted, err := Seed(s.ctx, s.store, testNow)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 3, inserted)
}

// TestProductStoreIntegration runs the ProductStore integration tests.
func TestProductStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(ProductStoreSuite))
}

func (s *ProductStoreSuite) TestCreateAndFindByID() {
	// given
	toCreate := newProduct("Monitor LG 27", "4567890123456", "249.99", 8, "Monitores")
	toCreate.Image = strPtr("https://example.com/monitor.png")

	// when
	created, err := s.store.Create(s.ctx, toCreate)

	// then
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(4), created.ID)
	require.Equal(s.T(), "249.99", created.Price.StringFixed(2))
	require.NotNil(s.T(), created.Image)

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), created.Name, fetched.Name)
	require.Equal(s.T(), created.Barcode, fetched.Barcode)
	require.True(s.T(), created.Price.Equal(fetched.Price))
	require.WithinDuration(s.T(), testNow, fetched.CreatedAt, time.Second)
}

func (s *ProductStoreSuite) TestCreate_DuplicateBarcode() {
	_, err := s.store.Create(s.ctx, newProduct("Copy", "1234567890123", "10.00", 1, "Otros"))
	require.ErrorIs(s.T(), err, perrors.ErrDuplicateBarcode)
}

func (s *ProductStoreSuite) TestCreate_NonPositivePrice() {
	_, err := s.store.Create(s.ctx, newProduct("Goma", "5678901234567", "0.00", 1, "Oficina"))
	require.ErrorIs(s.T(), err, perrors.ErrInvalidProduct)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, 999)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestFindByBarcode() {
	found, err := s.store.FindByBarcode(s.ctx, "2345678901234")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), found.ID)

	_, err = s.store.FindByBarcode(s.ctx, "9999999999")
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestFindAll() {
	testCases := []struct {
		name          string
		filter        catalog.Filter
		page          catalog.Page
		expectedIDs   []int64
		expectedTotal int
	}{
		{name: "everything", page: catalog.NewPage(1, 10), expectedIDs: []int64{1, 2, 3}, expectedTotal: 3},
		{name: "paged", page: catalog.NewPage(2, 2), expectedIDs: []int64{3}, expectedTotal: 3},
		{name: "past the end", page: catalog.NewPage(3, 2), expectedIDs: []int64{}, expectedTotal: 3},
		{name: "category substring", filter: catalog.Filter{Category: "ELECTR"}, page: catalog.NewPage(1, 10), expectedIDs: []int64{1}, expectedTotal: 1},
		{name: "price range", filter: catalog.Filter{PriceMin: decPtr("79.99"), PriceMax: decPtr("129.99")}, page: catalog.NewPage(1, 10), expectedIDs: []int64{2, 3}, expectedTotal: 2},
		{name: "stock minimum", filter: catalog.Filter{StockMin: intPtr(25)}, page: catalog.NewPage(1, 10), expectedIDs: []int64{2, 3}, expectedTotal: 2},
		{name: "search", filter: catalog.Filter{Search: "gaming"}, page: catalog.NewPage(1, 10), expectedIDs: []int64{3}, expectedTotal: 1},
		{name: "wildcards are literal", filter: catalog.Filter{Search: "%"}, page: catalog.NewPage(1, 10), expectedIDs: []int64{}, expectedTotal: 0},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			products, total, err := s.store.FindAll(s.ctx, tc.filter, tc.page)
			require.NoError(s.T(), err)
			assert.Equal(s.T(), tc.expectedTotal, total)
			got := make([]int64, 0, len(products))
			for _, p := range products {
				got = append(got, p.ID)
			}
			assert.Equal(s.T(), tc.expectedIDs, got)
		})
	}
}

func (s *ProductStoreSuite) TestUpdate() {
	later := testNow.Add(time.Hour)

	updated, err := s.store.Update(s.ctx, 1, catalog.Patch{
		Price: decPtr("799.5"),
		Image: strPtr(""),
	}, later)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "799.50", updated.Price.StringFixed(2))
	assert.Nil(s.T(), updated.Image)
	assert.Equal(s.T(), "Laptop HP Pavilion", updated.Name)
	assert.WithinDuration(s.T(), later, updated.UpdatedAt, time.Second)
	assert.WithinDuration(s.T(), testNow, updated.CreatedAt, time.Second)
}

func (s *ProductStoreSuite) TestUpdate_EmptyPatch() {
	updated, err := s.store.Update(s.ctx, 2, catalog.Patch{}, testNow.Add(time.Hour))
	require.NoError(s.T(), err)
	assert.WithinDuration(s.T(), testNow, updated.UpdatedAt, time.Second)
}

func (s *ProductStoreSuite) TestUpdate_DuplicateBarcode() {
	_, err := s.store.Update(s.ctx, 1, catalog.Patch{Barcode: strPtr("3456789012345")}, testNow)
	require.ErrorIs(s.T(), err, perrors.ErrDuplicateBarcode)
}

func (s *ProductStoreSuite) TestUpdate_NotFound() {
	_, err := s.store.Update(s.ctx, 404, catalog.Patch{Stock: intPtr(1)}, testNow)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestDeleteByID() {
	deleted, err := s.store.DeleteByID(s.ctx, 3)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Teclado Mecánico", deleted.Name)

	_, err = s.store.FindByID(s.ctx, 3)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)

	_, err = s.store.DeleteByID(s.ctx, 3)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestCategoriesAndStats() {
	_, err := s.store.Create(s.ctx, newProduct("Auriculares", "6789012345678", "49.99", 4, "Gaming"))
	require.NoError(s.T(), err)

	categories, err := s.store.Categories(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []catalog.CategoryCount{
		{Name: "Electrónicos", Count: 1},
		{Name: "Accesorios", Count: 1},
		{Name: "Gaming", Count: 2},
	}, categories)

	stats, err := s.store.Stats(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 4, stats.TotalProducts)
	assert.Equal(s.T(), 94, stats.TotalStock)
	assert.Equal(s.T(), "289.99", stats.AveragePrice.StringFixed(2))
	assert.Equal(s.T(), 1, stats.LowStock)
	assert.Equal(s.T(), 3, stats.TotalCategories)
	require.NotNil(s.T(), stats.MostExpensive)
	assert.Equal(s.T(), int64(1), stats.MostExpensive.ID)
	require.NotNil(s.T(), stats.Cheapest)
	assert.Equal(s.T(), int64(4), stats.Cheapest.ID)
}

func (s *ProductStoreSuite) TestStats_Empty() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE productos RESTART IDENTITY")
	require.NoError(s.T(), err)

	stats, err := s.store.Stats(s.ctx)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), stats.TotalProducts)
	assert.True(s.T(), stats.AveragePrice.IsZero())
	assert.Nil(s.T(), stats.MostExpensive)
	assert.Nil(s.T(), stats.Cheapest)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
