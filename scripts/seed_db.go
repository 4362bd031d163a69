// Seeds the database with the schema and sample marketplace data.
//
// Usage: go run scripts/seed_db.go
// Connection settings come from the same environment variables the server
// uses (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME).
package main

import (
	"context"
	"fmt"
	"os"

	"agriconnect/internal/auth"
	"agriconnect/internal/config"

	"github.com/jackc/pgx/v5"
)

const schema = `
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

-- orders outlive the listings they were placed against: product_id is kept
-- as a plain id so deleting a product never touches its orders, and pages
-- render a placeholder for the missing listing.
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

CREATE INDEX IF NOT EXISTS idx_products_farmer ON products(farmer_id);
CREATE INDEX IF NOT EXISTS idx_cart_items_consumer ON cart_items(consumer_id);
CREATE INDEX IF NOT EXISTS idx_offers_farmer ON offers(farmer_id);
CREATE INDEX IF NOT EXISTS idx_offers_consumer ON offers(consumer_id);
CREATE INDEX IF NOT EXISTS idx_orders_farmer ON orders(farmer_id);
CREATE INDEX IF NOT EXISTS idx_orders_consumer ON orders(consumer_id);
`

type seedUser struct {
	username string
	email    string
	password string
	fullName string
	phone    string
	role     string
	address  string
}

type seedProduct struct {
	farmer      string
	name        string
	description string
	price       string
	quantity    int
	unit        string
	category    string
}

var users = []seedUser{
	{"farmer_john", "john@farmer.com", "farmer123", "John Smith", "+1234567890", "farmer", "123 Farm Road, Agricultural Valley"},
	{"farmer_mary", "mary@farmer.com", "farmer123", "Mary Johnson", "+1234567891", "farmer", "456 Green Acres, Farm Town"},
	{"consumer_alice", "alice@consumer.com", "consumer123", "Alice Brown", "+1234567893", "consumer", "321 City Street, Urban Area"},
	{"consumer_bob", "bob@consumer.com", "consumer123", "Bob Davis", "+1234567894", "consumer", "654 Market Avenue, Downtown"},
}

var products = []seedProduct{
	{"farmer_john", "Fresh Tomatoes", "Organic vine-ripened tomatoes, perfect for salads and cooking.", "3.50", 500, "kg", "Vegetables"},
	{"farmer_john", "Sweet Corn", "Fresh sweet corn harvested daily. Great for grilling or boiling.", "2.75", 300, "kg", "Vegetables"},
	{"farmer_mary", "Farm Eggs", "Free-range eggs from pasture-raised hens.", "4.20", 150, "dozen", "Dairy & Eggs"},
	{"farmer_mary", "Raw Honey", "Unfiltered wildflower honey straight from the hive.", "8.00", 60, "jar", "Pantry"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Schema created.")

	var existing int
	if err := conn.QueryRow(ctx, "SELECT count(*) FROM users").Scan(&existing); err != nil {
		fmt.Fprintf(os.Stderr, "failed to check existing data: %v\n", err)
		os.Exit(1)
	}
	if existing > 0 {
		fmt.Println("Database already has data. Skipping seeding.")
		return
	}

	farmerIDs := make(map[string]string)
	for _, u := range users {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
			os.Exit(1)
		}

		var id string
		err = conn.QueryRow(ctx, `
			INSERT INTO users (id, username, email, password_hash, full_name, phone, role, address)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			u.username, u.email, hash, u.fullName, u.phone, u.role, u.address,
		).Scan(&id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to insert user %s: %v\n", u.username, err)
			os.Exit(1)
		}
		if u.role == "farmer" {
			farmerIDs[u.username] = id
		}
	}
	fmt.Printf("Inserted %d users.\n", len(users))

	for _, p := range products {
		_, err := conn.Exec(ctx, `
			INSERT INTO products (id, farmer_id, name, description, price, quantity, unit, category)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)`,
			farmerIDs[p.farmer], p.name, p.description, p.price, p.quantity, p.unit, p.category,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to insert product %s: %v\n", p.name, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Inserted %d products.\n", len(products))

	fmt.Println("Seeding complete. Demo accounts: farmer_john/farmer123, consumer_alice/consumer123")
}
