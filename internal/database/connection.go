package database

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect ouvre la connexion PostgreSQL
func Connect(databaseURL string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, err
	}

	// Pool de connexions
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Connecté à PostgreSQL")
	return db, nil
}

// ConnectRedis ouvre la connexion Redis (optionnelle). Sans Redis, le cache
// du tableau de bord est simplement désactivé.
func ConnectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL non configurée, cache désactivé")
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("URL Redis invalide: %v, cache désactivé", err)
		return nil
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Redis injoignable: %v, cache désactivé", err)
		return nil
	}

	log.Println("Connecté à Redis")
	return client
}
