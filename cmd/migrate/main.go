package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const modeImportLegacy = "import-legacy"

var migrateFunc = db.Migrate

func main() {
	mode := flag.String("mode", "up", "up, down, status, reset, version, redo or import-legacy")
	file := flag.String("file", "", "export file for import-legacy (JSON array or one document per line)")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.L().Fatal("invalid configuration", zap.Error(err))
	}

	database, err := db.NewDatabase(cfg)
	if err != nil {
		logger.L().Fatal("database unavailable", zap.Error(err))
	}
	defer database.Close()

	if err := run(context.Background(), database, *mode, *file); err != nil {
		logger.L().Fatal("migrate failed", zap.String("mode", *mode), zap.Error(err))
	}
}

func run(ctx context.Context, database *sql.DB, mode, file string) error {
	if mode != modeImportLegacy {
		return migrateFunc(ctx, database, mode)
	}

	if file == "" {
		return errors.New("import-legacy needs -file")
	}
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	stats, err := importLegacy(ctx, product.NewRepository(database), f)
	if err != nil {
		return err
	}
	logger.L().Info("legacy import finished",
		zap.Int("imported", stats.Imported),
		zap.Int("skipped", stats.Skipped),
		zap.Int("rejected", stats.Rejected),
	)
	return nil
}

// productStore is the part of the catalog repository the import writes through.
type productStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	Create(ctx context.Context, p *product.Product) error
}

type importStats struct {
	Imported int
	Skipped  int
	Rejected int
}

// importLegacy converts every document in r and inserts it. Documents whose
// derived id already exists are skipped, so an export can be imported again.
// Documents that cannot be converted are logged and counted; a store failure
// stops the import.
func importLegacy(ctx context.Context, store productStore, r io.Reader) (importStats, error) {
	var stats importStats
	log := logger.FromCtx(ctx).With(zap.String("layer", "migrate"), zap.String("method", "importLegacy"))

	docs, err := decodeLegacy(r)
	if err != nil {
		return stats, err
	}

	for i, doc := range docs {
		p, err := product.FromLegacy(doc)
		if err != nil {
			stats.Rejected++
			log.Warn("legacy product rejected", zap.Int("index", i), zap.Error(err))
			continue
		}

		_, err = store.GetByID(ctx, p.ID)
		switch {
		case err == nil:
			stats.Skipped++
			continue
		case !errors.Is(err, product.ErrProductNotFound):
			return stats, fmt.Errorf("lookup product %s: %w", p.ID, err)
		}

		if err := store.Create(ctx, &p); err != nil {
			return stats, fmt.Errorf("insert product %s: %w", p.ID, err)
		}
		stats.Imported++
	}
	return stats, nil
}

// decodeLegacy accepts a JSON array or a stream of documents, the two
// layouts database export tools produce.
func decodeLegacy(r io.Reader) ([]product.LegacyProduct, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var docs []product.LegacyProduct
		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("decode export: %w", err)
		}
		return docs, nil
	}

	var docs []product.LegacyProduct
	for {
		var doc product.LegacyProduct
		err := dec.Decode(&doc)
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode export document %d: %w", len(docs), err)
		}
		docs = append(docs, doc)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
