package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-signals-bot/application/broadcast"
	"trading-signals-bot/internal/core/access"
	"trading-signals-bot/internal/core/catalog"
	"trading-signals-bot/internal/core/conversation"
	"trading-signals-bot/internal/core/cooldown"
	"trading-signals-bot/internal/core/signals"
	"trading-signals-bot/internal/core/storage"
	"trading-signals-bot/internal/delivery/health"
	"trading-signals-bot/internal/delivery/telegram"
	"trading-signals-bot/internal/infrastructure/cache/redis"
	"trading-signals-bot/internal/infrastructure/config"
	"trading-signals-bot/internal/infrastructure/persistence/memory"
	"trading-signals-bot/internal/infrastructure/persistence/postgres/database"
	"trading-signals-bot/internal/infrastructure/persistence/postgres/repository/selections"
	"trading-signals-bot/internal/infrastructure/persistence/redis_storage/throttle"
	"trading-signals-bot/pkg/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	if err := logger.InitGlobal(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.DebugMode); err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.GetLogger().Close()

	broadcastState := "выключена ⛔"
	if cfg.Broadcast.Enabled {
		broadcastState = "включена ✅"
	}
	logger.GetLogger().Status("БОТ ТОРГОВЫХ СИГНАЛОВ", [][2]string{
		{"Окружение", cfg.Environment},
		{"Попыток кода", fmt.Sprintf("%d, бан %s", cfg.Access.MaxAttempts, cfg.Access.BanDuration)},
		{"Кулдаун сигналов", cfg.Cooldown.Duration.String()},
		{"Рассылка", fmt.Sprintf("%s (UTC%+d)", broadcastState, cfg.Broadcast.UTCOffset)},
		{"PostgreSQL", fmt.Sprintf("%v", cfg.Database.Enabled)},
		{"Redis", fmt.Sprintf("%v", cfg.Redis.Enabled)},
	})

	ctx := context.Background()

	// ======================
	// ХРАНИЛИЩЕ ВЫБОРА
	// ======================
	var selectionStore storage.SelectionStore
	var dbService *database.DatabaseService

	if cfg.Database.Enabled {
		dbService = database.NewDatabaseService(&cfg.Database)
		if err := dbService.Start(); err != nil {
			logger.GetLogger().Fatal("Не удалось запустить базу данных: %v", err)
		}
		defer dbService.Stop()

		repo := selections.NewSelectionRepository(dbService.DB())
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.GetLogger().Fatal("Не удалось подготовить схему: %v", err)
		}
		selectionStore = repo
	} else {
		logger.Warn("⚠️ PostgreSQL выключен, выбор инструментов хранится в памяти")
		selectionStore = memory.NewSelectionStore()
	}

	// ======================
	// ЛИМИТЫ: ПОПЫТКИ И КУЛДАУНЫ
	// ======================
	var attemptStore access.AttemptStore
	var cooldownStore cooldown.Store
	var redisCache *redis.Cache

	if cfg.Redis.Enabled {
		redisCache = redis.NewCache(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisCache.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.GetLogger().Fatal("Не удалось подключиться к Redis: %v", err)
		}
		defer redisCache.Close()

		logger.Info("✅ Подключение к Redis установлено: %s", cfg.Redis.Addr())
		attemptStore = throttle.NewAttemptStore(redisCache, cfg.Access.BanDuration)
		cooldownStore = throttle.NewCooldownStore(redisCache)
	} else {
		logger.Warn("⚠️ Redis выключен, лимиты хранятся в памяти")
		attemptStore = memory.NewAttemptStore()
		cooldownStore = memory.NewCooldownStore()
	}

	// ======================
	// ЯДРО
	// ======================
	cat := catalog.New()
	generator := signals.NewGenerator()
	accessGate := access.NewGate(cfg.Access.Code, cfg.Access.MaxAttempts, cfg.Access.BanDuration, attemptStore)
	cooldownGate := cooldown.NewGate(cfg.Cooldown.Duration, cooldownStore)

	// ======================
	// TELEGRAM
	// ======================
	client := telegram.NewTelegramClient(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken)
	sender := telegram.NewMessageSender(client)
	machine := conversation.NewMachine(
		memory.NewStateStore(),
		selectionStore,
		accessGate,
		cooldownGate,
		generator,
		cat,
		sender,
	)
	bot := telegram.NewTelegramBot(sender, machine)
	polling := telegram.NewPollingClient(client, bot, cfg.Telegram.PollingTimeout)

	// ======================
	// ФОНОВЫЕ СЕРВИСЫ
	// ======================
	healthServer := health.NewServer(cfg.HTTP.Port)
	healthServer.Start()
	defer healthServer.Stop()

	if cfg.Broadcast.Enabled {
		broadcaster := broadcast.NewBroadcaster(selectionStore, generator, cat, bot, cfg.Broadcast.UTCOffset)
		broadcaster.Start()
		defer broadcaster.Stop()
	}

	polling.Start()
	defer polling.Stop()

	// Ожидаем сигнал завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("🛑 Получен сигнал %v, останавливаемся...", sig)
}
