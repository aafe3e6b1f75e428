package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTAccessSecret string

	// ✅ Redis Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Kafka Config
	KafkaBrokers   string
	KafkaSyncTopic string

	// ✅ Calendar Provider Config
	GoogleCredentialsPath string
	SyncCalendarID        string
	SyncRoomID            uint
	SyncIntervalMinutes   int

	// MaterializeAheadDays bounds how far ahead recurring booking
	// requests are expanded for validation
	MaterializeAheadDays int
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	syncInterval, _ := strconv.Atoi(os.Getenv("SYNC_INTERVAL_MINUTES"))
	if syncInterval <= 0 {
		syncInterval = 5
	}

	syncRoomID, _ := strconv.Atoi(os.Getenv("SYNC_ROOM_ID"))

	ahead, _ := strconv.Atoi(os.Getenv("MATERIALIZE_AHEAD_DAYS"))
	if ahead <= 0 {
		ahead = 90
	}

	return &Config{
		Port: os.Getenv("PORT"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		KafkaSyncTopic: os.Getenv("KAFKA_SYNC_TOPIC"),

		GoogleCredentialsPath: os.Getenv("GOOGLE_CREDENTIALS_PATH"),
		SyncCalendarID:        os.Getenv("SYNC_CALENDAR_ID"),
		SyncRoomID:            uint(syncRoomID),
		SyncIntervalMinutes:   syncInterval,

		MaterializeAheadDays: ahead,
	}
}
