package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"docserver/aggregate"
	"docserver/ai"
	"docserver/database"
	"docserver/documents"
	"docserver/extractors"
	"docserver/internal/config"
	"docserver/lookup"
	"docserver/processor"
	"docserver/registry"
	"docserver/render"
	"docserver/resolver"
	"docserver/server"
)

func main() {
	log.Println("Запуск сервера обработки документов должников...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir, cfg.RegistryDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Ошибка создания папки %s: %v", dir, err)
		}
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Ошибка открытия базы данных: %v", err)
	}
	defer db.Close()
	log.Printf("Используется база данных: %s", cfg.DatabasePath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Реестры ЦБ: кэшированный снимок загружается сразу, свежий
	// скачивается фоном и подменяется без остановки обработки.
	store, err := registry.NewStore(cfg.RegistryDir)
	if err != nil {
		log.Fatalf("Ошибка инициализации кэша реестров: %v", err)
	}
	updater := registry.NewUpdater(store, cfg.RegistryBanksURL, cfg.RegistryMFOURL)
	manager := registry.NewManager(updater, store)
	if err := manager.Load(); err != nil {
		log.Printf("Кэшированный снимок реестров недоступен: %v", err)
	}
	go manager.Run(ctx)

	aiClient := ai.NewClient(ai.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.AITimeout,
	})

	finder := lookup.NewClient(lookup.ClientConfig{
		BaseURL:   cfg.LookupBaseURL,
		RateLimit: rate.Every(cfg.LookupInterval),
	})

	extractor := documents.NewExtractor(extractors.NewSidecarExtractor(), aiClient)
	aggregator := aggregate.NewAggregator(resolver.New(manager, finder), aiClient, aiClient)
	proc := processor.New(extractor, aggregator, render.NewTextRenderer(), cfg.TemplateDir, cfg.OutputDir)

	worker := server.NewWorker(db, proc)
	go worker.Run(ctx)

	srv := server.NewServer(cfg, db, proc, aiClient)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Получен сигнал остановки, завершаем работу...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка остановки сервера: %v", err)
	}
	log.Println("Сервер остановлен")
}
