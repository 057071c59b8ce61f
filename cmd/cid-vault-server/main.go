// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	gcloud "cloud.google.com/go/storage"
	"github.com/dgraph-io/badger/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/ziflex/lecho/v2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/optakt/cid-vault/api/rest"
	"github.com/optakt/cid-vault/encoding/zbor"
	"github.com/optakt/cid-vault/models/vault"
	"github.com/optakt/cid-vault/service/accounts"
	"github.com/optakt/cid-vault/service/content"
	"github.com/optakt/cid-vault/service/files"
	"github.com/optakt/cid-vault/service/index"
	"github.com/optakt/cid-vault/service/ledger"
	"github.com/optakt/cid-vault/service/metrics"
	"github.com/optakt/cid-vault/service/profiler"
	"github.com/optakt/cid-vault/service/sealer"
	"github.com/optakt/cid-vault/service/storage"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run())
}

func run() int {

	// Signal catching for clean shutdown.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Command line parameter initialization.
	var (
		flagBucket      string
		flagCache       uint64
		flagContent     string
		flagCost        int
		flagCredentials string
		flagData        string
		flagImmediate   bool
		flagInterval    time.Duration
		flagKeys        int
		flagLevel       string
		flagMetrics     string
		flagPort        uint16
		flagProfiler    string
		flagTimeout     time.Duration
	)

	pflag.StringVarP(&flagBucket, "bucket", "b", "", "Google Cloud Storage bucket for file content (overrides --content)")
	pflag.Uint64Var(&flagCache, "cache", 64<<20, "maximum size of the content cache in bytes (0 disables it)")
	pflag.StringVarP(&flagContent, "content", "c", "content", "directory for file content")
	pflag.IntVar(&flagCost, "cost", bcrypt.DefaultCost, "bcrypt cost for password hashes")
	pflag.StringVar(&flagCredentials, "credentials", "", "path to Google Cloud credentials file (default credentials if empty)")
	pflag.StringVarP(&flagData, "data", "d", "data", "directory for the ledger and account index")
	pflag.BoolVar(&flagImmediate, "immediate", false, "seal a block for every upload")
	pflag.DurationVarP(&flagInterval, "interval", "i", time.Minute, "interval for sealing pending transactions (0 disables timed sealing)")
	pflag.IntVar(&flagKeys, "keys", 2048, "size of the RSA key pair generated for each account (0 disables encryption)")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVarP(&flagMetrics, "metrics", "m", "", "address for the metrics server (disabled if empty)")
	pflag.Uint16VarP(&flagPort, "port", "p", 8080, "port to host the vault API on")
	pflag.StringVar(&flagProfiler, "profiler", "", "address for the pprof server (disabled if empty)")
	pflag.DurationVar(&flagTimeout, "timeout", 30*time.Second, "timeout for content bucket operations")

	pflag.Parse()

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)
	elog := lecho.From(log)

	// Initialize the index database and the storage library.
	db, err := badger.Open(vault.DefaultOptions(flagData))
	if err != nil {
		log.Error().Str("data", flagData).Err(err).Msg("could not open index database")
		return failure
	}
	defer db.Close()

	codec, err := zbor.NewCodec()
	if err != nil {
		log.Error().Err(err).Msg("could not initialize storage codec")
		return failure
	}
	lib := storage.New(codec)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	read := index.NewReader(db, lib)
	write := index.NewMetricsWriter(index.NewWriter(db, lib), reg)

	// Restore the ledger and the accounts from the index.
	blocks, err := read.Blocks()
	if err != nil {
		log.Error().Err(err).Msg("could not load blocks")
		return failure
	}
	chain, err := ledger.New(log, ledger.WithWriter(write), ledger.WithBlocks(blocks))
	if err != nil {
		log.Error().Err(err).Msg("could not initialize ledger")
		return failure
	}

	directory, err := accounts.New(log,
		accounts.WithCost(flagCost),
		accounts.WithKeyPairs(flagKeys),
		accounts.WithIndex(read, write),
	)
	if err != nil {
		log.Error().Err(err).Msg("could not initialize account directory")
		return failure
	}

	// Initialize the content store.
	var store vault.Content
	if flagBucket != "" {
		var opts []option.ClientOption
		if flagCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(flagCredentials))
		}
		client, err := gcloud.NewClient(context.Background(), opts...)
		if err != nil {
			log.Error().Err(err).Msg("could not connect to Google Cloud Storage")
			return failure
		}
		defer client.Close()
		store = content.NewBucket(client.Bucket(flagBucket), flagTimeout)
	} else {
		store, err = content.NewDisk(flagContent)
		if err != nil {
			log.Error().Str("content", flagContent).Err(err).Msg("could not initialize content directory")
			return failure
		}
	}
	if flagCache > 0 {
		store, err = content.NewCache(store, flagCache)
		if err != nil {
			log.Error().Err(err).Msg("could not initialize content cache")
			return failure
		}
	}

	var options []func(*files.Config)
	if flagImmediate {
		options = append(options, files.WithImmediateSealing())
	}
	service := files.New(log, directory, chain, store, options...)

	ctrl := rest.NewController(directory, chain, service, read)
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.Logger = elog
	server.Validator = rest.NewValidator()
	server.Use(lecho.Middleware(lecho.Config{Logger: elog}))
	ctrl.Routes(server)

	stats := metrics.NewServer(log, flagMetrics, reg)
	profile := profiler.NewServer(log, flagProfiler)
	seal := sealer.New(log, chain, sealer.WithInterval(flagInterval))

	// This section launches the main executing components in their own
	// goroutine, so they can run concurrently. Afterwards, we wait for an
	// interrupt signal or the failure of one of the components.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info().Uint16("port", flagPort).Uint64("length", chain.Length()).Msg("CID Vault starting")
		err := server.Start(fmt.Sprint(":", flagPort))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not serve vault API: %w", err)
		}
		log.Info().Msg("CID Vault stopped")
		return nil
	})
	if flagMetrics != "" {
		group.Go(stats.Start)
	}
	if flagProfiler != "" {
		group.Go(profile.Start)
	}
	if flagInterval > 0 {
		group.Go(func() error {
			return seal.Run(ctx)
		})
	}

	select {
	case <-sig:
		log.Info().Msg("CID Vault stopping")
	case <-ctx.Done():
		log.Warn().Msg("CID Vault aborted")
	}
	go func() {
		<-sig
		log.Warn().Msg("forcing exit")
		os.Exit(1)
	}()
	cancel()

	// The following code starts a shut down with a certain timeout and makes
	// sure that the main executing components are shutting down within the
	// allocated shutdown time.
	shutdown, done := context.WithTimeout(context.Background(), 30*time.Second)
	defer done()

	var merr *multierror.Error
	err = server.Shutdown(shutdown)
	if err != nil {
		merr = multierror.Append(merr, fmt.Errorf("could not shut down vault API: %w", err))
	}
	if flagMetrics != "" {
		err = stats.Stop(shutdown)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("could not shut down metrics server: %w", err))
		}
	}
	if flagProfiler != "" {
		err = profile.Stop(shutdown)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("could not shut down profiler: %w", err))
		}
	}
	err = group.Wait()
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	// Pending transactions only live in memory, so they are sealed on exit.
	if len(chain.Pending()) > 0 {
		_, err = seal.Seal()
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("could not seal pending transactions: %w", err))
		}
	}

	err = merr.ErrorOrNil()
	if err != nil {
		log.Error().Err(err).Msg("CID Vault shutdown failed")
		return failure
	}

	return success
}
