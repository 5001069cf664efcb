// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

// toWordSize converts an encoded length to a storage word count, with a
// simplified rule: anything beyond one word counts as two.
func toWordSize(length int) uint64 {
	if length > 32 {
		return 2
	}
	return 1
}
