package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

type seedCategory struct {
	Name        string
	Description string
	Icon        string
	Order       int
}

type seedProvider struct {
	Category    string
	Name        string
	Description string
	Phone       string
	HourlyRate  float64
	YearsOfExp  int
	// weekday -> [start, end)
	Windows map[int][2]string
}

var weekdays = map[int][2]string{
	1: {"09:00:00", "17:00:00"},
	2: {"09:00:00", "17:00:00"},
	3: {"09:00:00", "17:00:00"},
	4: {"09:00:00", "17:00:00"},
	5: {"09:00:00", "17:00:00"},
}

var seedCategories = []seedCategory{
	{Name: "Plumbing", Description: "Leak repairs, faucet and water heater installation", Icon: "water", Order: 1},
	{Name: "Electrical", Description: "Wiring, panels, lighting and safety inspections", Icon: "flash", Order: 2},
	{Name: "Cleaning", Description: "Home and office deep cleaning", Icon: "sparkles", Order: 3},
	{Name: "Painting", Description: "Interior and exterior painting and finishing", Icon: "paint-roller", Order: 4},
	{Name: "HVAC", Description: "Air conditioning and heating installation and maintenance", Icon: "snow", Order: 5},
	{Name: "Carpentry", Description: "Doors, windows, furniture and lock repairs", Icon: "key", Order: 6},
}

var seedProviders = []seedProvider{
	{Category: "Plumbing", Name: "Ace Plumbing", Description: "Licensed plumbers, same-day service", Phone: "+15550100001", HourlyRate: 45.50, YearsOfExp: 12, Windows: weekdays},
	{Category: "Plumbing", Name: "FlowFix", Description: "Emergency repairs on weekends too", Phone: "+15550100002", HourlyRate: 55, YearsOfExp: 6,
		Windows: map[int][2]string{0: {"10:00:00", "16:00:00"}, 6: {"08:00:00", "14:00:00"}}},
	{Category: "Electrical", Name: "Bright Spark Electric", Description: "Certified electricians", Phone: "+15550100003", HourlyRate: 60, YearsOfExp: 9, Windows: weekdays},
	{Category: "Cleaning", Name: "Sparkle Home", Description: "Eco-friendly products", Phone: "+15550100004", HourlyRate: 30, YearsOfExp: 4,
		Windows: map[int][2]string{1: {"08:00:00", "18:00:00"}, 3: {"08:00:00", "18:00:00"}, 5: {"08:00:00", "18:00:00"}}},
	{Category: "Painting", Name: "Fresh Coat Painters", Description: "Interior and exterior specialists", Phone: "+15550100005", HourlyRate: 40, YearsOfExp: 15, Windows: weekdays},
	{Category: "HVAC", Name: "CoolAir Services", Description: "Installation and yearly maintenance plans", Phone: "+15550100006", HourlyRate: 70, YearsOfExp: 11, Windows: weekdays},
	{Category: "Carpentry", Name: "Oak & Iron", Description: "Custom woodwork and lock changes", Phone: "+15550100007", HourlyRate: 50, YearsOfExp: 20,
		Windows: map[int][2]string{2: {"09:00:00", "15:00:00"}, 4: {"09:00:00", "15:00:00"}}},
}

// seedDatabase inserts the demo catalog; rows that already exist are left alone
func seedDatabase(ctx context.Context, dbURL string, log zerolog.Logger) error {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Info().Msg("✅ Connected to database for seeding")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range seedCategories {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO service_categories (name, description, icon, display_order, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
			ON CONFLICT (name) DO NOTHING`,
			c.Name, c.Description, c.Icon, c.Order)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Info().Str("category", c.Name).Msg("✅ Created category")
		} else {
			log.Info().Str("category", c.Name).Msg("⏭️ Category already exists")
		}
	}

	for _, p := range seedProviders {
		var providerID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM service_providers WHERE business_name = $1`, p.Name).Scan(&providerID)
		switch {
		case err == sql.ErrNoRows:
			if err := tx.QueryRowContext(ctx, `
				INSERT INTO service_providers
					(category_id, business_name, description, phone, hourly_rate, years_experience, is_active, created_at, updated_at)
				SELECT id, $2, $3, $4, $5, $6, TRUE, NOW(), NOW() FROM service_categories WHERE name = $1
				RETURNING id`,
				p.Category, p.Name, p.Description, p.Phone, p.HourlyRate, p.YearsOfExp).Scan(&providerID); err != nil {
				return fmt.Errorf("seed provider %s: %w", p.Name, err)
			}
			log.Info().Str("provider", p.Name).Msg("✅ Created provider")
		case err != nil:
			return fmt.Errorf("lookup provider %s: %w", p.Name, err)
		default:
			log.Info().Str("provider", p.Name).Msg("⏭️ Provider already exists")
			continue
		}

		for day, window := range p.Windows {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO provider_availability (provider_id, day_of_week, start_time, end_time, is_active)
				VALUES ($1, $2, $3, $4, TRUE)`,
				providerID, day, window[0], window[1]); err != nil {
				return fmt.Errorf("seed availability for %s: %w", p.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	log.Info().Int("categories", len(seedCategories)).Int("providers", len(seedProviders)).Msg("✨ Seeding completed")
	return nil
}
