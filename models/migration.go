package models

import (
	"log"

	"bitbucket.org/mmdatafocus/pos_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Branch{},
		&Product{},
		&Sale{}, &SaleItem{},
		&InventoryHistory{},
		&PromoCodeGenerationHistory{},
		&EventRecord{},
		&IdempotencyKey{},
		&EntitySequence{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
