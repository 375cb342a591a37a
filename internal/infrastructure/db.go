package infrastructure

import (
	"Caixinha/config"
	"Caixinha/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewDb(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.App.Environment == "development" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.DBName).
			Msg("Falha ao conectar ao banco de dados")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error().Err(err).Msg("Falha ao obter instância do banco de dados")
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	logger.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.DBName).
		Msg("Conexão com banco de dados estabelecida com sucesso")

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

type tableNamer interface {
	TableName() string
}

func runMigrations(db *gorm.DB) error {
	logger.Info().Msg("Executando migrations...")

	entities := []tableNamer{
		&walletDB{},
		&goalDB{},
		&goalMemberDB{},
		&invitationDB{},
		&contributionDB{},
		&budgetItemDB{},
		&budgetPaymentDB{},
		&activityDB{},
	}

	for _, entity := range entities {
		if err := db.AutoMigrate(entity); err != nil {
			logger.Error().
				Err(err).
				Str("entity", entity.TableName()).
				Msg("Erro ao migrar entidade")
			return err
		}
	}

	if err := ensureCheckConstraints(db); err != nil {
		logger.Warn().Err(err).Msg("Aviso ao criar constraints de valores positivos")
	}

	logger.Info().Msg("Migrations executadas com sucesso!")
	return nil
}

// ensureCheckConstraints garante no banco as mesmas regras de valor que os
// serviços validam.
func ensureCheckConstraints(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	constraints := []struct {
		table string
		name  string
		check string
	}{
		{"wallets", "chk_wallets_balance_non_negative", "balance >= 0"},
		{"goal_contributions", "chk_goal_contributions_amount_positive", "amount > 0"},
		{"goal_budgets", "chk_goal_budgets_amount_positive", "amount > 0"},
		{"goal_budget_payments", "chk_goal_budget_payments_amount_positive", "amount > 0"},
	}

	checkQuery := `
		SELECT COUNT(*)
		FROM information_schema.table_constraints
		WHERE table_name = $1
		AND constraint_name = $2
	`

	for _, c := range constraints {
		var count int
		if err := sqlDB.QueryRow(checkQuery, c.table, c.name).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		query := `ALTER TABLE ` + c.table + ` ADD CONSTRAINT ` + c.name + ` CHECK (` + c.check + `)`
		if _, err := sqlDB.Exec(query); err != nil {
			logger.Warn().
				Err(err).
				Str("constraint", c.name).
				Msg("Não foi possível criar constraint")
			return err
		}
		logger.Info().
			Str("constraint", c.name).
			Msg("Constraint criada")
	}

	return nil
}
