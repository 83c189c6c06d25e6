package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/marketmapper/marketmapper/config"
	"github.com/marketmapper/marketmapper/internal/infrastructure/gemini"
	"github.com/marketmapper/marketmapper/internal/infrastructure/session"
	"github.com/marketmapper/marketmapper/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	sessionStore session.Manager
	stateSigner  *helpers.OAuthStateSigner
	generator    gemini.Generator
	rabbitPub    *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)  { cfg = c }
func GetConfig() *config.Config   { return cfg }
func SetLogger(l *logrus.Logger)  { logger = l }
func GetLogger() *logrus.Logger   { return logger }
func SetPGPool(p *pgxpool.Pool)   { pgPool = p }
func GetPGPool() *pgxpool.Pool    { return pgPool }
func SetRedis(r *redis.Client)    { redisClient = r }
func GetRedis() *redis.Client     { return redisClient }
func SetGCS(s *storage.Client)    { gcsClient = s }
func GetGCS() *storage.Client     { return gcsClient }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

func SetSessions(s session.Manager) { sessionStore = s }
func GetSessions() session.Manager  { return sessionStore }

func SetStateSigner(s *helpers.OAuthStateSigner) { stateSigner = s }
func GetStateSigner() *helpers.OAuthStateSigner  { return stateSigner }

func SetGenerator(g gemini.Generator) { generator = g }
func GetGenerator() gemini.Generator  { return generator }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
