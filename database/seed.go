package database

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type SeedFood struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	ImageUrl    string `yaml:"image_url"`
}

type SeedCategory struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	ImageUrl    string     `yaml:"image_url"`
	Foods       []SeedFood `yaml:"foods"`
}

type SeedZone struct {
	AreaName            string `yaml:"area_name"`
	Description         string `yaml:"description"`
	FeeAmount           string `yaml:"fee_amount"`
	EstimatedDistanceKm *int   `yaml:"estimated_distance_km"`
	SearchKeywords      string `yaml:"search_keywords"`
}

type SeedData struct {
	Users         []SeedUser     `yaml:"users"`
	Categories    []SeedCategory `yaml:"categories"`
	ShippingZones []SeedZone     `yaml:"shipping_zones"`
}

func LoadSeed(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return &data, nil
}

// SeedFile membaca file YAML lalu memanggil Seed. File yang tidak ada dilewati.
func SeedFile(db *gorm.DB, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		utils.InfoLogger.Printf("Seed file %s not found, skipping", path)
		return nil
	}
	data, err := LoadSeed(path)
	if err != nil {
		return err
	}
	return Seed(db, data)
}

// Seed hanya mengisi tabel yang masih kosong, jadi aman dipanggil setiap start.
func Seed(db *gorm.DB, data *SeedData) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedUsers(tx, data.Users); err != nil {
			return err
		}
		if err := seedCatalog(tx, data.Categories); err != nil {
			return err
		}
		return seedZones(tx, data.ShippingZones)
	})
}

func isEmpty(tx *gorm.DB, model interface{}) (bool, error) {
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}

func seedUsers(tx *gorm.DB, users []SeedUser) error {
	if ok, err := isEmpty(tx, &models.User{}); err != nil || !ok {
		return err
	}
	for _, u := range users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		role := u.Role
		if role == "" {
			role = models.RoleStaff
		}
		if err := tx.Create(&models.User{Name: u.Name, Email: u.Email, Password: string(hashed), Role: role}).Error; err != nil {
			return err
		}
	}
	utils.InfoLogger.Printf("Seeded %d users", len(users))
	return nil
}

func seedCatalog(tx *gorm.DB, categories []SeedCategory) error {
	if ok, err := isEmpty(tx, &models.Category{}); err != nil || !ok {
		return err
	}
	foods := 0
	for _, c := range categories {
		cat := models.Category{Name: c.Name, Description: c.Description, ImageUrl: c.ImageUrl, IsActive: true}
		if err := tx.Create(&cat).Error; err != nil {
			return err
		}
		for _, f := range c.Foods {
			price, err := decimal.NewFromString(f.Price)
			if err != nil {
				return fmt.Errorf("food %q: invalid price %q", f.Name, f.Price)
			}
			food := models.Food{
				CategoryID:  cat.ID,
				Name:        f.Name,
				Description: f.Description,
				Price:       price,
				ImageUrl:    f.ImageUrl,
				IsAvailable: true,
			}
			if err := tx.Create(&food).Error; err != nil {
				return err
			}
			foods++
		}
	}
	utils.InfoLogger.Printf("Seeded %d categories, %d foods", len(categories), foods)
	return nil
}

func seedZones(tx *gorm.DB, zones []SeedZone) error {
	if ok, err := isEmpty(tx, &models.ShippingZone{}); err != nil || !ok {
		return err
	}
	for _, z := range zones {
		fee, err := decimal.NewFromString(z.FeeAmount)
		if err != nil {
			return fmt.Errorf("zone %q: invalid fee %q", z.AreaName, z.FeeAmount)
		}
		zone := models.ShippingZone{
			AreaName:            z.AreaName,
			Description:         z.Description,
			FeeAmount:           fee,
			EstimatedDistanceKm: z.EstimatedDistanceKm,
			IsActive:            true,
			SearchKeywords:      z.SearchKeywords,
		}
		if err := tx.Create(&zone).Error; err != nil {
			return err
		}
	}
	utils.InfoLogger.Printf("Seeded %d shipping zones", len(zones))
	return nil
}
