package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/joho/godotenv"

	"github.com/noah-isme/barber-billing/internal/obs"
	"github.com/noah-isme/barber-billing/internal/seed"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

func main() {
	_ = godotenv.Load()

	count := flag.Int("count", 50, "number of transactions to generate")
	days := flag.Int("days", 30, "spread transactions over this many past days")
	seedValue := flag.Uint64("seed", 0, "random seed; zero picks one")
	table := flag.String("table", "transactions", "what to print: transactions or services")
	out := flag.String("out", "", "output file; defaults to stdout")
	flag.Parse()

	logger := obs.NewLoggerTo(os.Stderr, "console", "info")

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *out).Msg("create output")
		}
		defer f.Close()
		w = f
	}

	cat := seed.Catalog()
	var err error
	switch *table {
	case "services":
		err = gocsv.Marshal(cat.Services(), w)
	case "transactions":
		txns := seed.Generate(cat, seed.Options{Count: *count, Days: *days, Now: time.Now(), Seed: *seedValue})
		for _, t := range txns {
			if cerr := t.CheckAmounts(); cerr != nil {
				logger.Fatal().Err(cerr).Msg("generated inconsistent transaction")
			}
		}
		err = gocsv.Marshal(transactions.Rows(txns), w)
		logger.Info().Int("count", len(txns)).Msg("generated transactions")
	default:
		err = fmt.Errorf("unknown table %q", *table)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("seeder failed")
	}
}
