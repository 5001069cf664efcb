// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// noopService discards all measurements.
type noopService struct{}

func (n *noopService) GetOrCreateCountMeter(string) CountMeter { return noopMeter{} }

func (n *noopService) GetOrCreateCountVecMeter(string, []string) CountVecMeter { return noopMeter{} }

func (n *noopService) GetOrCreateGaugeMeter(string) GaugeMeter { return noopMeter{} }

func (n *noopService) GetOrCreateGaugeVecMeter(string, []string) GaugeVecMeter { return noopMeter{} }

func (n *noopService) GetOrCreateHistogramMeter(string, []int64) HistogramMeter { return noopMeter{} }

func (n *noopService) GetOrCreateHandler() http.Handler { return nil }

type noopMeter struct{}

func (noopMeter) Add(int64) {}

func (noopMeter) Set(int64) {}

func (noopMeter) Observe(int64) {}

func (noopMeter) AddWithLabel(int64, map[string]string) {}

func (noopMeter) SetWithLabel(int64, map[string]string) {}
