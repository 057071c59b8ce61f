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

package sealer

import (
	"time"
)

// DefaultConfig is the default configuration for the timed sealer.
var DefaultConfig = Config{
	Interval: time.Minute,
}

// Config contains the configuration options for the timed sealer.
type Config struct {
	Interval time.Duration
}

// WithInterval sets the interval at which pending transactions are sealed.
func WithInterval(interval time.Duration) func(*Config) {
	return func(cfg *Config) {
		cfg.Interval = interval
	}
}
