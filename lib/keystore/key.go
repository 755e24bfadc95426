// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import "crypto/ecdsa"

// zeroPrivateKey scrubs the scalar of a parsed private key. The public
// half is derivable from the address and carries no secret.
func zeroPrivateKey(key *ecdsa.PrivateKey) {
	if key != nil && key.D != nil {
		key.D.SetInt64(0)
	}
}
