package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"3000"`
	Env      string `envconfig:"ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Mongo
	MongoURI     string        `envconfig:"MONGO_URI" required:"true"`
	DBName       string        `envconfig:"DB_NAME" default:"redHope_db"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	// Auth
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Stripe
	StripeSecret        string `envconfig:"STRIPE_SECRET" required:"true"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	SiteDomain          string `envconfig:"SITE_DOMAIN" default:"http://localhost:5173"`
	FundingCurrency     string `envconfig:"FUNDING_CURRENCY" default:"usd"`

	// RabbitMQ (optional)
	RabbitURL      string `envconfig:"RABBIT_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"redhope.events"`

	// Cloudinary (optional)
	CloudinaryCloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `envconfig:"CLOUDINARY_API_SECRET"`

	StrictStatusTransitions bool     `envconfig:"STRICT_STATUS_TRANSITIONS" default:"false"`
	CORSOrigins             []string `envconfig:"CORS_ORIGINS"`

	MongoClient *mongo.Client `ignored:"true"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.SiteDomain = strings.TrimRight(c.SiteDomain, "/")
	c.FundingCurrency = strings.ToLower(c.FundingCurrency)
	return &c, nil
}

// ConnectMongo opens the single client shared by every store and pings it.
func (c *Config) ConnectMongo(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.MongoURI).SetServerAPIOptions(serverAPI))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("mongo ping: %w", err)
	}
	c.MongoClient = client
	return nil
}

// Database returns the application database on the connected client.
func (c *Config) Database() *mongo.Database {
	return c.MongoClient.Database(c.DBName)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
