package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	osignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalengine/internal/candlebuf"
	"signalengine/internal/config"
	"signalengine/internal/errkind"
	"signalengine/internal/logging"
	"signalengine/internal/metrics"
	"signalengine/internal/model"
	"signalengine/internal/mtf"
	"signalengine/internal/output"
	"signalengine/internal/publish"
	engsignal "signalengine/internal/signal"
	"signalengine/internal/transport/rest"
	"signalengine/internal/transport/ws"
	"signalengine/internal/verify"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "perpetual futures symbol, e.g. BTCUSDT")
	interval := flag.String("interval", "5m", "primary candle interval")
	contract := flag.String("contract", "PERPETUAL", "continuous-contract type for REST backfill")
	confirm := flag.String("confirm", "15m,1h", "comma-separated higher timeframes to confirm against")
	history := flag.Int("history", 300, "candles to backfill per timeframe before streaming")
	logInterval := flag.Duration("log-interval", 30*time.Second, "dashboard log line interval")
	logLevel := flag.String("log-level", "info", "zerolog level: debug, info, warn, error")
	configPath := flag.String("config", "", "optional YAML config file")
	metricsAddr := flag.String("metrics-addr", ":9090", "address for /metrics and /healthz")
	wsAddr := flag.String("ws-addr", ":8080", "address for the signal/verification websocket feed")
	outputPath := flag.String("output", "data/signals.log", "append-only signal/verification log path")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logging.Init("signalengine", level)
	log.Info().Str("symbol", *symbol).Str("interval", *interval).Msg("signalengine: starting")

	// config.Symbol has no struct-tag default and is validate:"required", so
	// seed it from the flag via env before Load runs its validation pass.
	os.Setenv(config.EnvPrefix+"_SYMBOL", *symbol)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("signalengine: config invalid")
		os.Exit(errkind.ExitCode(errkind.ConfigInvalid))
	}
	cfg.Symbol = *symbol
	cfg.Interval = *interval
	confirmTFs := splitAndTrim(*confirm)
	cfg.MTF.ConfirmationTimeframes = confirmTFs

	if err := os.MkdirAll(pathDir(*outputPath), 0o755); err != nil {
		log.Error().Err(err).Msg("signalengine: cannot create output directory")
		os.Exit(errkind.ExitCode(errkind.Unrecoverable))
	}
	outLog, err := output.Open(*outputPath)
	if err != nil {
		log.Error().Err(err).Msg("signalengine: cannot open output log")
		os.Exit(errkind.ExitCode(errkind.Unrecoverable))
	}
	defer outLog.Close()

	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(*metricsAddr, health)
	metricsSrv.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	osignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	hub := publish.NewHub(*symbol)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	wsSrv := &http.Server{Addr: *wsAddr, Handler: mux}
	go func() {
		log.Info().Str("addr", *wsAddr).Msg("signalengine: publish server listening")
		if err := wsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("signalengine: publish server error")
		}
	}()

	timeframes := append([]string{cfg.Interval}, confirmTFs...)
	buffers := make(map[string]*candlebuf.Buffer, len(timeframes))
	fetcher := rest.NewFetcher()

	for _, tf := range timeframes {
		buf := candlebuf.New(cfg.CandleBufferCapacity)
		buffers[tf] = buf

		seed, err := fetcher.Backfill(ctx, *symbol, *contract, tf, *history)
		if err != nil {
			log.Warn().Err(err).Str("timeframe", tf).Msg("signalengine: backfill failed, starting cold")
		}
		for _, c := range seed {
			buf.Update(c)
			prom.CandlesIngested.Inc()
		}
		log.Info().Str("timeframe", tf).Int("candles", buf.Len()).Msg("signalengine: backfill complete")
	}

	generator := engsignal.New(cfg)
	tracker := verify.New()
	tracker.OnResolve = func(p *model.PendingVerification, horizon int, result model.HorizonResult) {
		hub.PublishVerification(p.SignalID, horizon, result)
		if err := outLog.WriteVerification(p.SignalID, horizon, p.Signal.Direction, result); err != nil {
			log.Warn().Err(err).Msg("signalengine: failed to write verification record")
		}
		h := model.Itoa(horizon)
		prom.VerificationChecked.WithLabelValues(h).Inc()
		if result.Outcome == model.OutcomeCorrect {
			prom.VerificationCorrect.WithLabelValues(h).Inc()
		}
		if stats, ok := tracker.Accuracy()[horizon]; ok {
			prom.AccuracyRatio.WithLabelValues(h).Set(stats.Accuracy())
		}
	}

	primaryTF := cfg.Interval
	primaryBuf := buffers[primaryTF]

	candleChs := make(map[string]chan model.Candle, len(timeframes))
	for _, tf := range timeframes {
		candleChs[tf] = make(chan model.Candle, 256)
	}

	for _, tf := range timeframes {
		tf := tf
		ingest := ws.New(ws.IngestConfig{
			Symbol:   *symbol,
			Interval: tf,
			OnReconnect: func() {
				prom.WSReconnects.Inc()
				if tf == primaryTF {
					health.SetWSConnected(true)
				}
				log.Info().Str("timeframe", tf).Msg("signalengine: ws connected")
			},
		})
		go ingest.Run(ctx, candleChs[tf])
	}

	var latestClose float64
	if last := primaryBuf.Closed(); len(last) > 0 {
		latestClose = last[len(last)-1].Close
	}
	var lastSignal *model.TradingSignal
	var snapshotSeq uint64

	// Confirmation timeframes just feed their own buffer.
	for _, tf := range confirmTFs {
		tf := tf
		go func() {
			buf := buffers[tf]
			for {
				select {
				case <-ctx.Done():
					return
				case c, ok := <-candleChs[tf]:
					if !ok {
						return
					}
					buf.Update(c)
					if c.IsClosed {
						prom.CandlesIngested.Inc()
					}
				}
			}
		}()
	}

	// Primary timeframe drives the whole per-candle-close pipeline.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-candleChs[primaryTF]:
				if !ok {
					return
				}
				primaryBuf.Update(c)
				health.SetWSConnected(true)
				health.SetLastTickTime(time.Now())
				latestClose = c.Close

				if !c.IsClosed {
					continue
				}
				prom.CandlesIngested.Inc()

				start := time.Now()
				prices := primaryBuf.PriceArrays(false)
				higherTF := buildHigherTF(buffers, confirmTFs)
				sig := generator.Generate(*symbol, prices, higherTF)
				prom.IndicatorComputeDur.Observe(time.Since(start).Seconds())

				prom.MarketStateGauge.Reset()
				prom.MarketStateGauge.WithLabelValues(string(sig.MarketState)).Set(1)

				if sig.Direction != model.Hold {
					closeTime := time.UnixMilli(c.OpenTime)
					if d, err := time.ParseDuration(primaryTF); err == nil {
						closeTime = closeTime.Add(d)
					}
					sig.ID = logging.GenerateTraceID(*symbol, closeTime)
					sig.Timestamp = c.OpenTime

					prom.SignalsByGrade.WithLabelValues(string(sig.Grade)).Inc()
					prom.SignalsByDirection.WithLabelValues(string(sig.Direction)).Inc()

					hub.PublishSignal(sig, closeTime)
					prom.E2ELatency.Observe(time.Since(closeTime).Seconds())
					if err := outLog.WriteSignal(sig); err != nil {
						log.Warn().Err(err).Msg("signalengine: failed to write signal record")
					}
					tracker.Record(sig, c.OpenTime)
					lastSignal = &sig

					log.Info().
						Str("direction", string(sig.Direction)).
						Str("grade", string(sig.Grade)).
						Float64("strength", sig.AdjustedStrength).
						Str("state", string(sig.MarketState)).
						Msg("signalengine: signal emitted")
				}

				snapshotSeq++
				hub.PublishSnapshot(model.Snapshot{
					Symbol:          *symbol,
					PrimaryInterval: primaryTF,
					Seq:             snapshotSeq,
					Candle:          c,
					Indicators:      engsignal.DashboardIndicators(generator.LastSnapshot()),
					MarketState:     generator.LastMarketState(),
					LastSignal:      lastSignal,
					Accuracy:        tracker.Accuracy(),
					GeneratedAt:     time.Now().UnixMilli(),
				})
			}
		}
	}()

	dashboard := time.NewTicker(*logInterval)
	defer dashboard.Stop()
	var lastDropped uint64
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-dashboard.C:
				tracker.Tick(now.UnixMilli(), latestClose)
				acc := tracker.Accuracy()
				log.Info().
					Int("clients", hub.ClientCount()).
					Int("pending", len(tracker.Pending())).
					Int("completed", len(tracker.Completed())).
					Interface("accuracy", acc).
					Msg("signalengine: dashboard")

				var dropped uint64
				for _, buf := range buffers {
					dropped += buf.DroppedCandles()
				}
				if dropped > lastDropped {
					prom.RingBufOverflow.Add(float64(dropped - lastDropped))
					lastDropped = dropped
				}
			}
		}
	}()

	<-sigCh
	log.Info().Msg("signalengine: shutdown signal received, cleaning up")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Stop(shutdownCtx)
	wsSrv.Shutdown(shutdownCtx)

	log.Info().Msg("signalengine: shutdown complete")
}

func buildHigherTF(buffers map[string]*candlebuf.Buffer, confirmTFs []string) map[string]mtf.TimeframeInputs {
	if len(confirmTFs) == 0 {
		return nil
	}
	out := make(map[string]mtf.TimeframeInputs, len(confirmTFs))
	for _, tf := range confirmTFs {
		buf, ok := buffers[tf]
		if !ok {
			continue
		}
		prices := buf.PriceArrays(true)
		if len(prices.Closes) == 0 {
			continue
		}
		out[tf] = mtf.TimeframeInputs{
			Highs:   prices.Highs,
			Lows:    prices.Lows,
			Closes:  prices.Closes,
			Volumes: prices.Volumes,
		}
	}
	return out
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pathDir(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return "."
	}
	return p[:i]
}
