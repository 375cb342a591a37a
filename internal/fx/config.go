package fx

import (
	"log"

	"Caixinha/config"
	"Caixinha/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		loadConfig,
	),
	fx.Invoke(
		initLogger,
	),
)

// loadConfig lê o .env antes de montar a configuração, senão as variáveis
// do arquivo não chegam ao config.Load.
func loadConfig() (*config.Config, error) {
	loadEnvFiles()
	return config.Load()
}

func loadEnvFiles() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: não foi possível carregar .env do diretório atual: %v", err)
	}
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("Aviso: não foi possível carregar ../../.env: %v", err)
	}
}

func initLogger(cfg *config.Config) {
	logger.Init(cfg)
	logger.Info().
		Str("environment", cfg.App.Environment).
		Str("paid_tolerance", cfg.Ledger.PaidTolerance.String()).
		Bool("redis", cfg.Redis.Enabled).
		Msg("Configuração carregada")
}
