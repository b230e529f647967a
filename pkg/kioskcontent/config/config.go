package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
	"github.com/infokiosk/kiosk-content/pkg/kioskcontent/auth"
	repomemory "github.com/infokiosk/kiosk-content/pkg/kioskcontent/repo/memory"
	repopg "github.com/infokiosk/kiosk-content/pkg/kioskcontent/repo/postgres"
	reposqlite "github.com/infokiosk/kiosk-content/pkg/kioskcontent/repo/sqlite"
	fsstorage "github.com/infokiosk/kiosk-content/pkg/kioskcontent/storage/fs"
	memorystorage "github.com/infokiosk/kiosk-content/pkg/kioskcontent/storage/memory"
	s3storage "github.com/infokiosk/kiosk-content/pkg/kioskcontent/storage/s3"
)

// ServerConfig holds everything the kiosk server needs to come up. Values
// are read from the environment; zero-config runs land on the in-memory
// repository and store, which suits local development.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"` // memory, sqlite, postgres
	DatabaseURL  string `env:"DATABASE_URL"`
	SQLitePath   string `env:"SQLITE_PATH" env-default:"kiosk.db"`

	StorageType string `env:"STORAGE_TYPE" env-default:"memory"` // memory, fs, s3
	UploadDir   string `env:"UPLOAD_DIR" env-default:"./data/uploads"`

	S3Region          string `env:"S3_REGION" env-default:"us-east-1"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3CreateBucket    bool   `env:"S3_CREATE_BUCKET" env-default:"false"`

	SessionKey    string `env:"SESSION_KEY"`
	AdminUser     string `env:"ADMIN_USER" env-default:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads the configuration from the environment.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when using sqlite")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when using postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	switch c.StorageType {
	case "memory":
	case "fs":
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR is required when using fs storage")
		}
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when using s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}

	if len(c.SessionKey) < 32 {
		return errors.New("SESSION_KEY must be at least 32 characters")
	}

	return nil
}

// Runtime bundles the wired service with the pieces the server binary
// mounts around it.
type Runtime struct {
	Service  kioskcontent.Service
	Sessions *auth.SessionManager

	closers []func()
}

// Close releases database handles held by the runtime.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// BuildRuntime wires repositories, storage, sessions and the service from
// the configuration, running migrations and seeding the admin user on the
// way up.
func (c *ServerConfig) BuildRuntime(ctx context.Context) (*Runtime, error) {
	rt := &Runtime{}

	pages, buttons, creds, err := c.buildRepositories(ctx, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	store, err := c.buildAssetStore()
	if err != nil {
		rt.Close()
		return nil, err
	}

	sessions, err := auth.NewSessionManager(c.SessionKey, creds)
	if err != nil {
		rt.Close()
		return nil, err
	}

	svc, err := kioskcontent.New(
		kioskcontent.WithPageRepository(pages),
		kioskcontent.WithButtonRepository(buttons),
		kioskcontent.WithAssetStore(store),
		kioskcontent.WithGate(auth.NewSessionGate()),
		kioskcontent.WithEventSink(kioskcontent.NewSlogEventSink(slog.Default())),
	)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Service = svc
	rt.Sessions = sessions
	return rt, nil
}

type credentialSeeder interface {
	auth.CredentialStore
	SeedUser(ctx context.Context, username, passwordHash string) error
}

func (c *ServerConfig) buildRepositories(ctx context.Context, rt *Runtime) (kioskcontent.PageRepository, kioskcontent.ButtonRepository, auth.CredentialStore, error) {
	switch c.DatabaseType {
	case "memory":
		repo := repomemory.New()
		creds := auth.NewMemoryCredentials()
		if c.AdminPassword != "" {
			if err := creds.Add(c.AdminUser, c.AdminPassword); err != nil {
				return nil, nil, nil, fmt.Errorf("failed to seed admin user: %w", err)
			}
		}
		return repo, repo, creds, nil

	case "sqlite":
		db, err := reposqlite.Open(c.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		rt.closers = append(rt.closers, func() { db.Close() })
		if err := reposqlite.Migrate(db); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		repo := reposqlite.NewRepository(db)
		if err := c.seedAdmin(ctx, repo); err != nil {
			return nil, nil, nil, err
		}
		return repo, repo, repo, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		if err := repopg.Migrate(ctx, pool); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to migrate postgres database: %w", err)
		}
		repo := repopg.NewRepository(pool)
		if err := c.seedAdmin(ctx, repo); err != nil {
			return nil, nil, nil, err
		}
		return repo, repo, repo, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) seedAdmin(ctx context.Context, repo credentialSeeder) error {
	if c.AdminPassword == "" {
		return nil
	}
	hash, err := auth.HashPassword(c.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if err := repo.SeedUser(ctx, c.AdminUser, hash); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}

func (c *ServerConfig) buildAssetStore() (kioskcontent.AssetStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.UploadDir})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3Region,
			Bucket:                 c.S3Bucket,
			AccessKeyID:            c.S3AccessKeyID,
			SecretAccessKey:        c.S3SecretAccessKey,
			Endpoint:               c.S3Endpoint,
			UsePathStyle:           c.S3UsePathStyle,
			CreateBucketIfNotExist: c.S3CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}
