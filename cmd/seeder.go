package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	tourdm "github.com/vqminh/tour-booking/internal/core/datamodel/tour"
	userdm "github.com/vqminh/tour-booking/internal/core/datamodel/user"
	voucherdm "github.com/vqminh/tour-booking/internal/core/datamodel/voucher"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample tours, departures, users and vouchers for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"cart_items", "vouchers", "departures", "tours"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing catalog data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)
		users := []userdm.User{
			{Email: "minh@mail.com", Name: "Minh", PasswordHash: string(hash), IsActive: true},
			{Email: "lan@mail.com", Name: "Lan", PasswordHash: string(hash), IsActive: true},
		}
		for _, u := range users {
			res := db.Where(userdm.User{Email: u.Email}).FirstOrCreate(&u)
			if res.Error != nil {
				log.Fatalf("failed to seed user %s: %v", u.Email, res.Error)
			}
			if res.RowsAffected > 0 {
				fmt.Println("Seeded user:", u.Email)
			}
		}

		tours := []tourdm.Tour{
			{
				Name: "Ha Long Bay Cruise", Slug: "ha-long-bay-cruise",
				Summary: "Two days on the bay with kayaking and cave visits", DurationDays: 2,
				UnitPriceAdult: 2500000, UnitPriceChild: 1500000, IsActive: true,
			},
			{
				Name: "Sapa Trekking", Slug: "sapa-trekking",
				Summary: "Three day trek through terraced valleys", DurationDays: 3,
				UnitPriceAdult: 3200000, UnitPriceChild: 2000000, IsActive: true,
			},
			{
				Name: "Mekong Delta Day Trip", Slug: "mekong-delta-day-trip",
				Summary: "Floating markets and river life", DurationDays: 1,
				UnitPriceAdult: 950000, UnitPriceChild: 600000, IsActive: true,
			},
		}
		for i := range tours {
			res := db.Where(tourdm.Tour{Slug: tours[i].Slug}).FirstOrCreate(&tours[i])
			if res.Error != nil {
				log.Fatalf("failed to seed tour %s: %v", tours[i].Slug, res.Error)
			}
			if res.RowsAffected > 0 {
				fmt.Println("Seeded tour:", tours[i].Name)
			}
		}

		now := time.Now()
		for _, t := range tours {
			for week := 1; week <= 4; week++ {
				date := now.AddDate(0, 0, 7*week).Format("2006-01-02")
				dep := tourdm.Departure{
					TourID:        t.ID,
					DepartureDate: date,
					SeatsTotal:    20,
					SeatsLeft:     20,
				}
				res := db.Where(tourdm.Departure{TourID: t.ID, DepartureDate: date}).FirstOrCreate(&dep)
				if res.Error != nil {
					log.Fatalf("failed to seed departure %s %s: %v", t.Slug, date, res.Error)
				}
			}
		}
		fmt.Println("Seeded departures for the next four weeks")

		expires := now.AddDate(0, 3, 0)
		vouchers := []voucherdm.Voucher{
			{Code: "WELCOME100K", DiscountAmount: 100000, MinOrderAmount: 1000000, IsActive: true, ExpiresAt: &expires},
			{Code: "SUMMER250K", DiscountAmount: 250000, MinOrderAmount: 3000000, IsActive: true, ExpiresAt: &expires},
		}
		for _, v := range vouchers {
			res := db.Where(voucherdm.Voucher{Code: v.Code}).FirstOrCreate(&v)
			if res.Error != nil {
				log.Fatalf("failed to seed voucher %s: %v", v.Code, res.Error)
			}
			if res.RowsAffected > 0 {
				fmt.Println("Seeded voucher:", v.Code)
			}
		}

		fmt.Println("Seeding complete")
	},
}
