package boot

import (
	"log"
	"time"

	"pbs/src/common"
	"pbs/src/db"
	"pbs/src/lib"
	"pbs/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Booking{},
		&models.Payment{},
		&models.Order{},
		&models.PortfolioItem{},
		&models.CarouselImage{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Fatalf("error initializing scheduler: %s", err.Error())
	}
	if _, err := lib.CreateCronJob(common.ReconcileOrphanedPayments, 10*time.Minute); err != nil {
		log.Printf("Error scheduling payment reconciliation job: %s\n", err.Error())
	}
	if _, err := lib.CreateCronJob(common.SweepExpiredResetTokens, time.Hour); err != nil {
		log.Printf("Error scheduling reset token sweeper: %s\n", err.Error())
	}
	sched.Start()
}
