package database

import (
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/utils"
	"gorm.io/gorm"
)

// Migrate menjalankan AutoMigrate untuk semua model lalu membersihkan data
// lama yang kolom wajibnya masih kosong.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	// order lama tanpa final_total
	if err := db.Exec("UPDATE orders SET final_total = total_amount + shipping_fee WHERE final_total IS NULL OR final_total = 0").Error; err != nil {
		utils.ErrorLogger.Printf("Error backfilling final_total: %v", err)
	}
	return nil
}
