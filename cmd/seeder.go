package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			for _, table := range []string{"audit_log", "risk_suggestions", "regulator_access", "invitations", "incidents", "risks", "user_profiles", "regulators", "organizations"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		orgName := "Acme Holdings"
		var orgID string
		row := db.Raw("SELECT id FROM organizations WHERE name = ?", orgName).Row()
		if err := row.Scan(&orgID); err != nil {
			orgID = uuid.NewString()
			if err := db.Exec("INSERT INTO organizations (id, name, created_at, updated_at) VALUES (?, ?, now(), now())", orgID, orgName).Error; err != nil {
				log.Fatalf("failed to insert organization: %v", err)
			}
			fmt.Println("Seeded organization:", orgName)
		} else {
			fmt.Println("organization already exists:", orgName)
		}

		superEmail := "superadmin@minrisk.local"
		var exists int
		row = db.Raw("SELECT 1 FROM user_profiles WHERE email = ?", superEmail).Row()
		if err := row.Scan(&exists); err != nil {
			superID := uuid.NewString()
			if err := db.Exec(
				"INSERT INTO user_profiles (id, organization_id, role, status, email, full_name, created_at, updated_at) VALUES (?, NULL, 'super_admin', 'approved', ?, 'Platform Admin', now(), now())",
				superID, superEmail).Error; err != nil {
				log.Fatalf("failed to insert super admin profile: %v", err)
			}
			fmt.Println("Seeded super admin profile:", superEmail)
		} else {
			fmt.Println("super admin profile already exists:", superEmail)
		}

		regulators := []struct {
			Name    string
			Country string
		}{
			{"Financial Conduct Authority", "GB"},
			{"Securities and Exchange Commission", "US"},
			{"Monetary Authority of Singapore", "SG"},
		}

		for _, reg := range regulators {
			var regID string
			row := db.Raw("SELECT id FROM regulators WHERE name = ?", reg.Name).Row()
			if err := row.Scan(&regID); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO regulators (id, name, country, created_at) VALUES (?, ?, ?, now())",
				uuid.NewString(), reg.Name, reg.Country).Error; err != nil {
				log.Fatalf("failed to insert regulator %s: %v", reg.Name, err)
			}
			fmt.Println("Seeded regulator:", reg.Name)
		}

		fmt.Println("Seeding complete")
	},
}
