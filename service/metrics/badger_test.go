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

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/cid-vault/service/metrics"
	"github.com/optakt/cid-vault/testing/helpers"
)

func TestRegisterBadgerMetrics(t *testing.T) {
	db := helpers.InMemoryDB(t)
	defer db.Close()

	reg := prometheus.NewRegistry()

	err := metrics.RegisterBadgerMetrics(reg)
	require.NoError(t, err)

	_, err = reg.Gather()
	assert.NoError(t, err)

	err = metrics.RegisterBadgerMetrics(reg)
	assert.Error(t, err, "registering twice should fail")
}
