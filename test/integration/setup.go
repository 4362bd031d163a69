package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"agriconnect/internal/model"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	// Prices are scanned into shopspring decimals, same as the server pool.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(20) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(100) NOT NULL,
			phone VARCHAR(20) NOT NULL DEFAULT '',
			role VARCHAR(10) NOT NULL CHECK (role IN ('farmer', 'consumer')),
			address VARCHAR(500) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			farmer_id UUID NOT NULL REFERENCES users(id),
			name VARCHAR(200) NOT NULL,
			description VARCHAR(1000) NOT NULL DEFAULT '',
			price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			unit VARCHAR(20) NOT NULL,
			category VARCHAR(50) NOT NULL DEFAULT '',
			image_path VARCHAR(255),
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS cart_items (
			id UUID PRIMARY KEY,
			consumer_id UUID NOT NULL REFERENCES users(id),
			product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			selected BOOLEAN NOT NULL DEFAULT TRUE,
			added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (consumer_id, product_id)
		);

		CREATE TABLE IF NOT EXISTS offers (
			id UUID PRIMARY KEY,
			consumer_id UUID NOT NULL REFERENCES users(id),
			farmer_id UUID NOT NULL REFERENCES users(id),
			product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			offered_price NUMERIC(10,2) NOT NULL CHECK (offered_price > 0),
			message VARCHAR(500) NOT NULL DEFAULT '',
			status VARCHAR(10) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'accepted', 'rejected')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			responded_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			consumer_id UUID NOT NULL REFERENCES users(id),
			farmer_id UUID NOT NULL REFERENCES users(id),
			product_id UUID NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			price_per_unit NUMERIC(10,2) NOT NULL,
			total_amount NUMERIC(10,2) NOT NULL,
			status VARCHAR(12) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'confirmed', 'in_transit', 'delivered', 'cancelled')),
			offer_id UUID REFERENCES offers(id) ON DELETE SET NULL,
			delivery_address VARCHAR(500) NOT NULL DEFAULT '',
			notes VARCHAR(500) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedUser inserts a test user and returns it.
func SeedUser(t *testing.T, pool *pgxpool.Pool, username, role string) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		FullName:     "Test " + username,
		Role:         role,
		CreatedAt:    time.Now(),
		IsActive:     true,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, username, email, password_hash, full_name, role, created_at, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FullName, user.Role, user.CreatedAt, user.IsActive,
	)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

// SeedProduct inserts a test product owned by the farmer and returns it.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, farmerID uuid.UUID, name, price string, quantity int) *model.Product {
	t.Helper()

	product := &model.Product{
		ID:          uuid.New(),
		FarmerID:    farmerID,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Quantity:    quantity,
		Unit:        "kg",
		Category:    "Vegetables",
		IsAvailable: true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, farmer_id, name, price, quantity, unit, category, is_available, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID, product.FarmerID, product.Name, product.Price, product.Quantity,
		product.Unit, product.Category, product.IsAvailable, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return product
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"orders", "offers", "cart_items", "products", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
