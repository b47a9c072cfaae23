package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"granimar/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial indexes for the retry cron query).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies AutoMigrate plus the schema patches.  Separated from
// NewDatabase so integration tests can run it against their own connection.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Material{},
		&model.Retiro{},
		&model.Sobro{},
		&model.MovimientoMaterial{},
		&model.Prestamo{},
		&model.AbonoPrestamo{},
		&model.Factura{},
		&model.FacturaItem{},
		&model.FacturaPago{},
		&model.Gasto{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully handle
// on its own.  Each statement uses IF NOT EXISTS semantics so re-running on an
// already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// partial index for the retry cron query on facturas
		{"idx_facturas_pending_retry", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'facturas')
    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_facturas_pending_retry') THEN
    CREATE INDEX idx_facturas_pending_retry
        ON facturas (next_retry_at)
        WHERE estado_documento = 'pendiente' AND next_retry_at IS NOT NULL;
  END IF;
END $$`},
		// sobros disponibles se listan ordenados por área: índice parcial
		{"idx_sobros_disponibles", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'sobros')
    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_sobros_disponibles') THEN
    CREATE INDEX idx_sobros_disponibles
        ON sobros (material_id, area_metros_cuadrados DESC)
        WHERE usable = true AND usado = false;
  END IF;
END $$`},
		// el ledger de movimientos se consulta por material y fecha
		{"idx_movimientos_material_fecha", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'movimientos_material')
    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimientos_material_fecha') THEN
    CREATE INDEX idx_movimientos_material_fecha
        ON movimientos_material (material_id, created_at DESC);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
