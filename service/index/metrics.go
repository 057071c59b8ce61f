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

package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optakt/cid-vault/models/vault"
)

// MetricsWriter wraps the writer and records metrics for the data it writes.
type MetricsWriter struct {
	write vault.Writer

	blocks       prometheus.Counter
	transactions prometheus.Counter
	accounts     prometheus.Counter
	height       prometheus.Gauge
}

// NewMetricsWriter wraps the given index writer, registering its metrics with
// the given registerer.
func NewMetricsWriter(write vault.Writer, reg prometheus.Registerer) *MetricsWriter {
	factory := promauto.With(reg)

	blocks := factory.NewCounter(prometheus.CounterOpts{
		Name: "indexed_blocks",
		Help: "the number of indexed blocks",
	})

	transactions := factory.NewCounter(prometheus.CounterOpts{
		Name: "indexed_transactions",
		Help: "the number of indexed transactions",
	})

	accounts := factory.NewCounter(prometheus.CounterOpts{
		Name: "indexed_accounts",
		Help: "the number of indexed account records",
	})

	height := factory.NewGauge(prometheus.GaugeOpts{
		Name: "indexed_height",
		Help: "the height of the last indexed block",
	})

	w := MetricsWriter{
		write: write,

		blocks:       blocks,
		transactions: transactions,
		accounts:     accounts,
		height:       height,
	}

	return &w
}

// Block indexes the given block.
func (w *MetricsWriter) Block(block *vault.Block) error {
	err := w.write.Block(block)
	if err != nil {
		return err
	}
	w.blocks.Inc()
	w.transactions.Add(float64(len(block.Transactions)))
	w.height.Set(float64(block.Index))
	return nil
}

// Account indexes the given account record.
func (w *MetricsWriter) Account(account *vault.Account) error {
	err := w.write.Account(account)
	if err != nil {
		return err
	}
	w.accounts.Inc()
	return nil
}
