package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coparently/coparently/internal/core/common/money"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			tables := []string{
				"action_tokens", "payment_obligations", "notifications",
				"messages", "expense_audit_trail", "expense_children",
				"expenses", "children", "co_parent_links", "parents",
			}
			for _, table := range tables {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		altheaID := "11111111-1111-1111-1111-111111111111"
		jordanID := "22222222-2222-2222-2222-222222222222"

		parents := []struct {
			ID    string
			Name  string
			Email string
		}{
			{altheaID, "Althea", "althea@mail.com"},
			{jordanID, "Jordan", "jordan@mail.com"},
		}

		for _, p := range parents {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM parents WHERE id = $1", p.ID).Scan(&exists); err == nil {
				fmt.Println("parent already exists:", p.Email)
				continue
			}
			if _, err := db.Exec(
				"INSERT INTO parents (id, display_name, email, created_at) VALUES ($1, $2, $3, now())",
				p.ID, p.Name, p.Email); err != nil {
				log.Fatalf("failed to insert parent %s: %v", p.Email, err)
			}
			fmt.Println("Seeded parent:", p.Email)
		}

		links := [][2]string{{altheaID, jordanID}, {jordanID, altheaID}}
		for _, link := range links {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM co_parent_links WHERE parent_id = $1", link[0]).Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec(
				"INSERT INTO co_parent_links (parent_id, co_parent_id, created_at) VALUES ($1, $2, now())",
				link[0], link[1]); err != nil {
				log.Fatalf("failed to link parents: %v", err)
			}
		}
		fmt.Println("Linked co-parents")

		children := []struct {
			Name      string
			BirthDate string
		}{
			{"Maya", "2016-04-12"},
			{"Eli", "2019-09-03"},
		}

		for _, c := range children {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM children WHERE name = $1 AND family_of = $2", c.Name, altheaID).Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec(
				"INSERT INTO children (id, family_of, name, birth_date, created_at) VALUES ($1, $2, $3, $4, now())",
				uuid.NewString(), altheaID, c.Name, c.BirthDate); err != nil {
				log.Fatalf("failed to insert child %s: %v", c.Name, err)
			}
			fmt.Println("Seeded child:", c.Name)
		}

		samples := []struct {
			Description string
			Amount      string
			Category    string
			PaidBy      string
			Status      string
		}{
			{"School uniforms", "84.50", "clothing", altheaID, "pending"},
			{"Pediatric dentist visit", "120.00", "medical", jordanID, "approved"},
			{"Soccer club spring fees", "65.00", "activities", altheaID, "paid"},
		}

		for _, s := range samples {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM expenses WHERE description = $1", s.Description).Scan(&exists); err == nil {
				continue
			}
			cents, err := money.ParseDecimalToCents(s.Amount)
			if err != nil {
				log.Fatalf("bad sample amount %s: %v", s.Amount, err)
			}
			if _, err := db.Exec(
				`INSERT INTO expenses (id, description, category, expense_date, amount_cents, paid_by, status, split_method, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, '50/50', now(), now())`,
				uuid.NewString(), s.Description, s.Category,
				time.Now().AddDate(0, 0, -7), cents, s.PaidBy, s.Status); err != nil {
				log.Fatalf("failed to insert expense %s: %v", s.Description, err)
			}
			fmt.Println("Seeded expense:", s.Description)
		}

		fmt.Println("Sample data seeded successfully")
	},
}
