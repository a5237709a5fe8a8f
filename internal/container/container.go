package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-service/config"
	"github.com/oksasatya/users-service/internal/application"
	"github.com/oksasatya/users-service/pkg/helpers"
)

// app-level container to share constructed components across packages.
// The router builds modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	rabbitPub   *helpers.RabbitPublisher
	bus         *application.Bus
)

func SetConfig(c *config.Config)              { cfg = c }
func GetConfig() *config.Config               { return cfg }
func SetLogger(l *logrus.Logger)              { logger = l }
func GetLogger() *logrus.Logger               { return logger }
func SetPGPool(p *pgxpool.Pool)               { pgPool = p }
func GetPGPool() *pgxpool.Pool                { return pgPool }
func SetRedis(r *redis.Client)                { redisClient = r }
func GetRedis() *redis.Client                 { return redisClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

// GetBus returns the bus built by the router; nil before InitModules runs.
func GetBus() *application.Bus  { return bus }
func SetBus(b *application.Bus) { bus = b }
