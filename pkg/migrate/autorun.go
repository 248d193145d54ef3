package migrate

import (
	"context"
	"fmt"

	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
	"github.com/Coco120903/BananaMeow-sub000/pkg/db"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot when running in dev
// with BANANAMEOW_AUTO_MIGRATE set. Other environments run cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "event", "migrate.autorun")
	results, err := Up(ctx, sqlDB, Embedded())
	if err != nil {
		return err
	}
	ctx = logg.WithField(ctx, "applied", len(results))
	logg.Info(ctx, "dev migrations applied")
	return nil
}
