// Package setup implements the maintenance tasks behind storectl: creating
// and seeding the three SQLite stores, wiping them, reporting their state and
// writing the user service's signing key.
package setup

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/infrastructure/db/sqlite"
	"github.com/99minutos/storefront/internal/seed"
)

const secretBytes = 32

// ErrSecretExists is returned by GenerateKey when the env file already holds
// a JWT_SECRET and overwriting was not requested.
var ErrSecretExists = errors.New("JWT_SECRET already set")

// StorePath is the database file of store inside dir.
func StorePath(dir string, store sqlite.Store) string {
	return filepath.Join(dir, string(store)+".db")
}

// StoreReport describes one database file.
type StoreReport struct {
	Store  sqlite.Store
	Path   string
	Exists bool
	Size   int64
	Rows   int
	Err    error
}

// OK reports whether the store exists and could be counted.
func (r StoreReport) OK() bool { return r.Exists && r.Err == nil }

type Report struct {
	Stores []StoreReport
}

// Healthy reports whether every store is present and readable.
func (r *Report) Healthy() bool {
	for _, s := range r.Stores {
		if !s.OK() {
			return false
		}
	}
	return len(r.Stores) > 0
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

func storeCounter(db *sqlx.DB, store sqlite.Store) counter {
	switch store {
	case sqlite.StoreUsers:
		return sqlite.NewAccountRepository(db)
	case sqlite.StoreProducts:
		return sqlite.NewProductRepository(db)
	default:
		return sqlite.NewOrderRepository(db)
	}
}

// Setup creates dir, brings every store schema up to date, seeds the demo
// catalog and sample users into empty stores and returns the resulting
// report. Running it twice is harmless.
func Setup(ctx context.Context, dir string, log zerolog.Logger) (*Report, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage directory")
	}

	fixtures, err := seed.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load fixtures")
	}

	for _, store := range sqlite.Stores {
		if err := setupStore(ctx, dir, store, fixtures, log); err != nil {
			return nil, errors.Wrapf(err, "setup %s", store)
		}
	}

	return Verify(ctx, dir)
}

func setupStore(ctx context.Context, dir string, store sqlite.Store, fixtures *seed.Fixtures, log zerolog.Logger) error {
	db, err := sqlite.OpenStore(ctx, StorePath(dir, store), store)
	if err != nil {
		return err
	}
	defer db.Close()

	switch store {
	case sqlite.StoreProducts:
		n, err := seed.SeedProducts(ctx, sqlite.NewProductRepository(db), fixtures)
		if err != nil {
			return err
		}
		log.Info().Str("store", string(store)).Int("created", n).Msg("products seeded")
	case sqlite.StoreUsers:
		n, err := seed.SeedUsers(ctx, sqlite.NewAccountRepository(db), fixtures)
		if err != nil {
			return err
		}
		log.Info().Str("store", string(store)).Int("created", n).Msg("users seeded")
	default:
		log.Info().Str("store", string(store)).Msg("schema ready")
	}
	return nil
}

// Reset deletes dir entirely and runs Setup.
func Reset(ctx context.Context, dir string, log zerolog.Logger) (*Report, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, errors.Wrap(err, "remove storage directory")
	}
	log.Warn().Str("dir", dir).Msg("storage wiped")
	return Setup(ctx, dir, log)
}

// Verify inspects every store without creating missing files.
func Verify(ctx context.Context, dir string) (*Report, error) {
	report := &Report{}
	for _, store := range sqlite.Stores {
		report.Stores = append(report.Stores, verifyStore(ctx, dir, store))
	}
	return report, nil
}

func verifyStore(ctx context.Context, dir string, store sqlite.Store) StoreReport {
	r := StoreReport{Store: store, Path: StorePath(dir, store)}

	info, err := os.Stat(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return r
	}
	if err != nil {
		r.Err = err
		return r
	}
	r.Exists = true
	r.Size = info.Size()

	db, err := sqlite.Open(ctx, r.Path)
	if err != nil {
		r.Err = err
		return r
	}
	defer db.Close()

	r.Rows, r.Err = storeCounter(db, store).Count(ctx)
	return r
}

// ListUsers returns every account of the users store in dir.
func ListUsers(ctx context.Context, dir string) ([]domain.Account, error) {
	path := StorePath(dir, sqlite.StoreUsers)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "users store")
	}

	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return sqlite.NewAccountRepository(db).List(ctx)
}

// GenerateKey writes a fresh url-safe signing secret to the env file at
// path, keeping any other variables already there. It refuses to replace an
// existing secret unless overwrite is set.
func GenerateKey(path string, overwrite bool) (string, error) {
	env := map[string]string{}
	existing, err := godotenv.Read(path)
	switch {
	case err == nil:
		env = existing
	case !errors.Is(err, fs.ErrNotExist):
		return "", errors.Wrap(err, "read env file")
	}

	if env["JWT_SECRET"] != "" && !overwrite {
		return "", ErrSecretExists
	}

	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "generate secret")
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	env["JWT_SECRET"] = secret
	env["ALGORITHM"] = "HS256"
	env["ACCESS_TOKEN_EXPIRE_MINUTES"] = "30"

	if err := godotenv.Write(env, path); err != nil {
		return "", errors.Wrap(err, "write env file")
	}
	return secret, nil
}
