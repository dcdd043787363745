package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/log"
	"expensetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger, err := cli.LoadAndValidateConfig(os.Stdout)
	if err != nil {
		os.Exit(1)
	}
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the event worker", log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.AuditLogPath), 0o755); err != nil {
		logger.Error("Failed to create audit log directory", log.FieldError, err, "path", cfg.AuditLogPath)
		os.Exit(1)
	}
	auditFile, err := os.OpenFile(cfg.AuditLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("Failed to open audit log", log.FieldError, err, "path", cfg.AuditLogPath)
		os.Exit(1)
	}
	defer auditFile.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	w := worker.NewAuditWorker(auditFile, logger)
	logger.Info("Starting expense event worker",
		"queue", cfg.AMQPQueue,
		"audit_log", cfg.AuditLogPath,
		log.FieldOperation, log.OpStartup)

	err = client.ConsumeExpenseEvents(ctx, w.HandleEvent)
	stats := w.Stats()
	logger.Info("Event worker stopped",
		"added", stats.Added,
		"deleted", stats.Deleted,
		"deleted_rows", stats.DeletedRows,
		log.FieldOperation, log.OpShutdown)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", log.FieldError, err)
		os.Exit(1)
	}
}
