package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/dcamacho/danishop-backend/internal/config"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var adjectives = []string{
	"Clásico", "Premium", "Artesanal", "Mini", "Doble", "Especial", "Tropical", "Casero",
}

var nouns = []string{
	"Alfajor", "Brownie", "Cheesecake", "Trufa", "Galleta", "Cupcake", "Pie de Limón", "Torta",
}

// randomProduct builds one plausible catalog entry. Prices land between 5.00
// and 250.00 with two decimals, stock between 0 and 80 so some products start
// sold out.
func randomProduct() (name, description string, price decimal.Decimal, stock int) {
	name = adjectives[rand.Intn(len(adjectives))] + " " + nouns[rand.Intn(len(nouns))]
	description = "Hecho el mismo día con ingredientes frescos."
	cents := 500 + rand.Int63n(24501)
	price = decimal.New(cents, -2)
	stock = rand.Intn(81)
	return
}

func main() {
	count := flag.Int("count", 20, "number of products to create")
	wipe := flag.Bool("clear", false, "delete existing products first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if *wipe {
		if _, err := db.Exec(`DELETE FROM products`); err != nil {
			log.Fatal(err)
		}
		fmt.Println("cleared products")
	}

	for i := 0; i < *count; i++ {
		name, description, price, stock := randomProduct()
		_, err := db.Exec(`
			INSERT INTO products (id, name, description, price, stock, is_active)
			VALUES ($1,$2,$3,$4,$5,TRUE)`,
			uuid.New(), name, description, price, stock)
		if err != nil {
			log.Fatal(err)
		}
	}
	fmt.Printf("seeded %d products\n", *count)

	if err := seedAdmin(db); err != nil {
		log.Fatal(err)
	}
}

// seedAdmin upserts the operator account from ADMIN_EMAIL / ADMIN_PASSWORD.
// Skipped silently when the variables are unset.
func seedAdmin(db *sql.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO users (id, email, password_hash, first_name, last_name, is_admin)
		VALUES ($1,$2,$3,'Admin','',TRUE)
		ON CONFLICT (email) DO UPDATE SET password_hash=EXCLUDED.password_hash, is_admin=TRUE`,
		uuid.New(), email, hash)
	if err != nil {
		return err
	}
	fmt.Printf("admin account ready: %s\n", email)
	return nil
}
