package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/repositories"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
	"github.com/jmwangi/bursaryhub/internal/pkg/auth"
)

// countySeed captures one county with its constituencies and wards
type countySeed struct {
	name           string
	constituencies map[string][]string
}

var defaultCounties = []countySeed{
	{
		name: "Samburu",
		constituencies: map[string][]string{
			"Samburu West":  {"Lodokejek", "Suguta Marmar", "Maralal", "Loosuk", "Poro"},
			"Samburu North": {"El-Barta", "Nachola", "Ndoto", "Nyiro", "Angata Nanyokie", "Baawa"},
			"Samburu East":  {"Waso", "Wamba West", "Wamba East", "Wamba North"},
		},
	},
	{
		name: "Nairobi",
		constituencies: map[string][]string{
			"Westlands": {"Kitisuru", "Parklands/Highridge", "Karura", "Kangemi", "Mountain View"},
			"Langata":   {"Karen", "Nairobi West", "Mugumo-ini", "South C", "Nyayo Highrise"},
		},
	},
}

// CreateDefaultData seeds the geography reference tables, the default site
// profile and the default admin account. Safe to run on every startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (geography, site profile, admin)...")
	var finalErr error

	for _, county := range defaultCounties {
		var countyID int64
		err := dbPool.QueryRow(ctx, `
			INSERT INTO counties (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, county.name).Scan(&countyID)
		if err != nil {
			lgr.Error().Err(err).Str("county", county.name).Msg("Error seeding county")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		for constituency, wards := range county.constituencies {
			var constituencyID int64
			err := dbPool.QueryRow(ctx, `
				INSERT INTO constituencies (county_id, name) VALUES ($1, $2)
				ON CONFLICT (county_id, name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`, countyID, constituency).Scan(&constituencyID)
			if err != nil {
				lgr.Error().Err(err).Str("constituency", constituency).Msg("Error seeding constituency")
				finalErr = errors.Join(finalErr, err)
				continue
			}

			for _, ward := range wards {
				_, err := dbPool.Exec(ctx, `
					INSERT INTO wards (constituency_id, name) VALUES ($1, $2)
					ON CONFLICT (constituency_id, name) DO NOTHING`, constituencyID, ward)
				if err != nil {
					lgr.Error().Err(err).Str("ward", ward).Msg("Error seeding ward")
					finalErr = errors.Join(finalErr, err)
				}
			}
		}
	}

	// Default site profile, only when none exists yet.
	_, err := dbPool.Exec(ctx, `
		INSERT INTO site_profiles (county_name, is_active)
		SELECT $1, TRUE
		WHERE NOT EXISTS (SELECT 1 FROM site_profiles)`, "Samburu")
	if err != nil {
		lgr.Error().Err(err).Msg("Error seeding site profile")
		finalErr = errors.Join(finalErr, err)
	}

	if err := createDefaultAdmin(ctx, dbPool, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createDefaultAdmin(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := repositories.NewUserRepository(dbPool)

	hashedPassword, err := auth.HashPassword("Admin123!")
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &models.User{
		Username: "admin",
		Password: hashedPassword,
		FullName: "System Administrator",
		RoleType: models.RoleAdmin,
		IsActive: true,
	}

	err = userRepo.Create(ctx, admin)
	if errors.Is(err, apperrors.ErrConflict) {
		lgr.Debug().Msg("Admin user already exists, skipping creation")
		return nil
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created")
	return nil
}
