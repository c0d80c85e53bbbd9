package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/ezquant/azsignal/azsignal"
	"github.com/ezquant/azsignal/azsignal/exchange"
	"github.com/ezquant/azsignal/azsignal/notification"
	"github.com/ezquant/azsignal/azsignal/plus/localkv"
	"github.com/ezquant/azsignal/azsignal/plus/models"
	"github.com/ezquant/azsignal/azsignal/storage"
	"github.com/ezquant/azsignal/azsignal/strategy"
	"github.com/ezquant/azsignal/azsignal/tools/log"
)

func main() {
	app := &cli.App{
		Name:     "azsignal",
		HelpName: "azsignal",
		Usage:    "Multi-timeframe strategy signal scanner",
		Commands: []*cli.Command{
			{
				Name:     "models",
				HelpName: "models",
				Usage:    "List registered models and their data subscriptions",
				Action:   listModels,
			},
			{
				Name:     "scan",
				HelpName: "scan",
				Usage:    "Run one scan over all configured models and print signals",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "eg. ./user_data/config.yml",
						Required: true,
					},
				},
				Action: scanOnce,
			},
			{
				Name:     "run",
				HelpName: "run",
				Usage:    "Scan continuously on the configured interval",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "eg. ./user_data/config.yml",
						Required: true,
					},
				},
				Action: runLoop,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func registerAll() error {
	for _, m := range []strategy.Model{
		strategy.NewEMACross(),
		strategy.NewEQTrend(),
	} {
		if _, ok := strategy.Get(m.Name()); !ok {
			if err := strategy.Register(m); err != nil {
				return err
			}
		}
	}
	return nil
}

func listModels(c *cli.Context) error {
	if err := registerAll(); err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Model", "Venues", "Operating TFs", "Required TFs", "Features"})

	for _, m := range strategy.Models() {
		required, err := m.RequiredTimeframes(m.OperatingTimeframes())
		if err != nil {
			return err
		}

		var venues []string
		for venue, symbols := range m.Instruments() {
			if len(symbols) > 0 {
				venues = append(venues, venue)
			}
		}
		var features []string
		for _, f := range m.Features() {
			features = append(features, f.Column())
		}

		table.Append([]string{
			m.Name(),
			strings.Join(venues, ","),
			strings.Join(m.OperatingTimeframes(), ","),
			strings.Join(required, ","),
			strings.Join(features, ","),
		})
	}
	table.Render()
	return nil
}

func buildEngine(c *cli.Context) (*azsignal.Engine, *models.Config, error) {
	if err := registerAll(); err != nil {
		return nil, nil, err
	}

	config, err := models.ReadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read config file: %w", err)
	}

	feeders := exchange.Feeders{
		"BitMEX": exchange.NewBitMEX(),
	}
	if venue, ok := config.Venues["Binance"]; ok {
		feeders["Binance"] = exchange.NewBinance(venue.APIKey, venue.APISecret)
	} else {
		feeders["Binance"] = exchange.NewBinance("", "")
	}

	enabled := strategy.Models()
	if len(config.Models) > 0 {
		enabled = enabled[:0]
		for _, name := range config.Models {
			m, ok := strategy.Get(name)
			if !ok {
				return nil, nil, fmt.Errorf("unknown model %q in config", name)
			}
			enabled = append(enabled, m)
		}
	}

	interval, err := azsignal.ScanIntervalFromTimeframe(config.ScanInterval)
	if err != nil {
		return nil, nil, err
	}

	options := []azsignal.Option{
		azsignal.WithScanInterval(interval),
		azsignal.WithWorkers(config.Workers),
	}

	if config.Database != "" {
		store, err := storage.FromSQLite(config.Database)
		if err != nil {
			return nil, nil, err
		}
		options = append(options, azsignal.WithStorage(store))
	}
	if config.KVPath != "" {
		kv, err := localkv.NewLocalKV(&config.KVPath)
		if err != nil {
			return nil, nil, err
		}
		options = append(options, azsignal.WithLocalKV(kv))
	}
	if config.Telegram != nil && config.Telegram.Token != "" {
		notifier, err := notification.NewTelegram(config.Telegram.Token, config.Telegram.ChatID)
		if err != nil {
			return nil, nil, err
		}
		options = append(options, azsignal.WithNotifier(notifier))
	}

	engine, err := azsignal.NewEngine(feeders, enabled, options...)
	if err != nil {
		return nil, nil, err
	}
	return engine, config, nil
}

func scanOnce(c *cli.Context) error {
	engine, _, err := buildEngine(c)
	if err != nil {
		return err
	}

	signals, err := engine.ScanOnce(c.Context)
	if err != nil {
		return err
	}
	if len(signals) == 0 {
		fmt.Println("no signals")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Venue", "Symbol", "TF", "Dir", "Entry", "Targets", "Model"})
	for _, sig := range signals {
		var targets []string
		for _, t := range sig.Targets {
			targets = append(targets,
				strconv.FormatFloat(t.Price, 'g', 8, 64)+"/"+
					strconv.FormatFloat(t.ClosePct, 'f', 0, 64)+"%")
		}
		table.Append([]string{
			sig.Venue,
			sig.Symbol,
			sig.Timeframe,
			string(sig.Direction),
			strconv.FormatFloat(sig.EntryPrice, 'g', 8, 64),
			strings.Join(targets, " "),
			sig.Strategy,
		})
	}
	table.Render()
	return nil
}

func runLoop(c *cli.Context) error {
	engine, _, err := buildEngine(c)
	if err != nil {
		return err
	}
	if err := engine.Warmup(c.Context); err != nil {
		return err
	}
	return engine.Run(c.Context)
}
