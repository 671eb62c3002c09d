package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiliiie/newport-bank-backend/internal/config"
	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
	"github.com/kiliiie/newport-bank-backend/internal/events"
	kafkaevents "github.com/kiliiie/newport-bank-backend/internal/events/kafka"
	"github.com/kiliiie/newport-bank-backend/internal/repo"
)

type App struct {
	cfg       config.Config
	db        *pgxpool.Pool
	redis     *redis.Client
	publisher *kafkaevents.Publisher
	router    *gin.Engine
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	db, err := newPostgres(cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.redis = rdb

	if err := runMigrations(cfg.PG.DSN, "./migrations"); err != nil {
		a.redis.Close()
		a.db.Close()
		return nil, err
	}

	accounts := repo.NewPGAccountRepo(db)
	if err := seedAdmin(context.Background(), accounts, cfg.Admin); err != nil {
		a.redis.Close()
		a.db.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	var publisher events.Publisher
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		a.publisher = kafkaevents.NewPublisher(brokers, cfg.Kafka.Topic)
		publisher = a.publisher
		log.Printf("transaction events enabled, brokers: %v", brokers)
	}

	a.router = newRouter(cfg, a.db, a.redis, publisher)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func runMigrations(dsn string, migrationsDir string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// seedAdmin creates the bootstrap administrator on first start. The admin is
// pre-approved so someone can approve everyone else.
func seedAdmin(ctx context.Context, accounts repo.AccountRepo, cfg config.AdminConfig) error {
	_, err := accounts.GetByEmail(ctx, cfg.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = accounts.Create(ctx, dom.Account{
		ID:           uuid.New().String(),
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Approved:     true,
		Role:         dom.RoleAdmin,
		Balance:      decimal.Zero,
	})
	if err != nil {
		return err
	}
	log.Printf("seeded admin account %s", cfg.Email)
	return nil
}

func newRouter(cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, publisher events.Publisher) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Cookie"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, db, rdb, publisher)
	return r
}
