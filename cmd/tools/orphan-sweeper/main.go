// cmd/tools/orphan-sweeper/main.go
//
// Operational CLI that scans the audit trail for provider purchases whose
// attempt never reached a terminal event (the process died between the
// provider call and the commit) and replays orphan recovery for each.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"numshop/internal/common/aws"
	"numshop/internal/common/config"
	"numshop/internal/common/database"
	"numshop/internal/common/logger"
	"numshop/internal/provider"
	"numshop/internal/purchase/audit"
	"numshop/internal/purchase/orphan"
)

func main() {
	lookback := flag.Duration("lookback", 24*time.Hour, "How far back to scan for stranded purchases")
	grace := flag.Duration("grace", 5*time.Minute, "Skip purchases newer than this, they may still be in flight")
	dryRun := flag.Bool("dry-run", false, "Report stranded purchases without recovering them")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address while sweeping (optional)")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres ping failed", zap.Error(err))
	}

	recorder := audit.NewRecorder(pg.GetDB(), log)
	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, recovery events will not be mirrored", zap.Error(err))
		} else {
			recorder = recorder.WithSearchMirror(es.GetClient(), cfg.Database.Elasticsearch.AuditIndex)
		}
	}

	var notifier orphan.Notifier
	if cfg.Alerts.SNS.Enabled {
		sns, err := aws.NewSNSPublisher(ctx, cfg.Alerts.SNS.Region, cfg.Alerts.SNS.TopicARN)
		if err != nil {
			zapLog.Warn("sns unavailable, escalations will be logged only", zap.Error(err))
		} else {
			notifier = sns
		}
	}

	handler := orphan.NewHandler(provider.NewClient(cfg.Provider), recorder, notifier, log)
	sweeper := orphan.NewSweeper(pg.GetDB(), handler, log)

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	report, err := sweeper.Sweep(ctx, *lookback, *grace, *dryRun)
	if err != nil {
		zapLog.Fatal("sweep failed", zap.Error(err))
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))

	if report.Outcomes[orphan.OutcomeManualReview] > 0 || report.Outcomes[orphan.OutcomeError] > 0 {
		os.Exit(2)
	}
}
