package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"storefront_back_end/internal/config"
	"storefront_back_end/internal/logger"
)

// Connections regroupe les clients vers les services externes.
// Elastic et MinIO peuvent être nil si non configurés.
type Connections struct {
	Scylla  *gocql.Session
	Redis   *redis.Client
	MinIO   *minio.Client
	Elastic *elasticsearch.Client
}

// Connect ouvre toutes les connexions. ScyllaDB et Redis sont obligatoires.
func Connect(ctx context.Context, cfg *config.Config) (*Connections, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conns := &Connections{}

	// 1. ScyllaDB
	session, err := connectScylla(cfg)
	if err != nil {
		return nil, fmt.Errorf("scylla: %w", err)
	}
	conns.Scylla = session

	if err := Migrate(session); err != nil {
		session.Close()
		return nil, fmt.Errorf("scylla schema: %w", err)
	}

	// 2. Redis
	conns.Redis, err = connectRedis(ctx, cfg)
	if err != nil {
		conns.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	// 3. MinIO
	if cfg.MinIOEndpoint != "" {
		conns.MinIO, err = connectMinIO(ctx, cfg)
		if err != nil {
			conns.Close()
			return nil, fmt.Errorf("minio: %w", err)
		}
	} else {
		logger.L().Warn("⚠️ MINIO_ENDPOINT absent — upload d'images désactivé")
	}

	// 4. Elasticsearch
	if cfg.ElasticURL != "" {
		conns.Elastic, err = connectElastic(cfg)
		if err != nil {
			logger.L().Warnf("⚠️ Elasticsearch indisponible, recherche en mode dégradé: %v", err)
			conns.Elastic = nil
		}
	} else {
		logger.L().Warn("⚠️ ELASTIC_URL absent — recherche en mode dégradé")
	}

	logger.L().Info("✅ Toutes les bases de données sont connectées")
	return conns, nil
}

// Close ferme les connexions ouvertes.
func (c *Connections) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
		logger.L().Info("🔌 Session ScyllaDB fermée")
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// =============================================
// SCYLLA DB
// =============================================

func connectScylla(cfg *config.Config) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 20
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	if cfg.ScyllaUser != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUser,
			Password: cfg.ScyllaPassword,
		}
	}

	if caPath := os.Getenv("SCYLLA_SSL_CA_PATH"); caPath != "" {
		caCert, err := os.ReadFile(caPath)
		if err != nil {
			return nil, fmt.Errorf("impossible de lire le certificat CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("impossible de parser le certificat CA")
		}
		cluster.SslOpts = &gocql.SslOptions{
			Config:                 &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
			EnableHostVerification: true,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %w", cfg.ScyllaKeyspace, err)
	}

	logger.L().Infof("✅ Session ScyllaDB ouverte sur le keyspace '%s'", cfg.ScyllaKeyspace)
	return session, nil
}

// =============================================
// REDIS
// =============================================

func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.L().Info("✅ Connecté à Redis")
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================

func connectElastic(cfg *config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, err
	}

	res, err := client.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("réponse Elastic: %s", res.Status())
	}

	logger.L().Info("✅ Connecté à Elasticsearch")
	return client, nil
}

// =============================================
// MINIO
// =============================================

func connectMinIO(ctx context.Context, cfg *config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("vérification bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("création bucket: %w", err)
		}
		logger.L().Infof("🪣 Bucket créé : %s", cfg.MinIOBucket)
	}

	logger.L().Infof("✅ Connecté à MinIO : %s", cfg.MinIOEndpoint)
	return client, nil
}
