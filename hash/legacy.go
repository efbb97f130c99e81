/*
 * Copyright 2020 Guardtime, Inc.
 *
 * This file is part of the Guardtime client SDK.
 *
 * Licensed under the Apache License, Version 2.0 (the "License").
 * You may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES, CONDITIONS, OR OTHER LICENSES OF ANY KIND, either
 * express or implied. See the License for the specific language governing
 * permissions and limitations under the License.
 * "Guardtime" and "KSI" are trademarks or registered trademarks of
 * Guardtime, Inc., and no license to trademarks is granted; Guardtime
 * reserves and retains all trademark rights.
 */

package hash

import (
	"encoding/asn1"
	"fmt"

	"github.com/guardtime/lsc/errors"
)

// legacyAlgo pairs a hash algorithm with the digest algorithm OID used by legacy
// (RFC 3161 / CMS) time-stamp tokens. The numeric value of Algorithm already matches
// the vendor GTID used on the wire in the legacy hash-chain encodings, so no separate
// GTID table is needed: Algorithm(gtid) is the lookup.
type legacyAlgo struct {
	algo Algorithm
	oid  asn1.ObjectIdentifier
}

var legacyAlgorithms = []legacyAlgo{
	{SHA1, asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}},          // id-sha1 (OIW)
	{SHA2_256, asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}},
	{RIPEMD160, asn1.ObjectIdentifier{1, 3, 36, 3, 2, 1}},      // ripemd160 (Teletrust)
	{SHA2_224, asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 4}},
	{SHA2_384, asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 2}},
	{SHA2_512, asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 3}},
}

// LegacyAlgorithmByOID resolves a digest algorithm identifier as it appears in a legacy
// CMS/RFC 3161 time-stamp token into the corresponding Algorithm.
//
// Returns a KsiInvalidArgumentError if the OID is not one of the six algorithms the legacy
// format supports.
func LegacyAlgorithmByOID(oid asn1.ObjectIdentifier) (Algorithm, error) {
	for _, la := range legacyAlgorithms {
		if la.oid.Equal(oid) {
			return la.algo, nil
		}
	}
	return SHA_NA, errors.New(errors.KsiInvalidArgumentError).
		AppendMessage(fmt.Sprintf("unsupported algorithm OID: %s", oid.String()))
}

// LegacyAlgorithmByGTID resolves a legacy hash-chain link's vendor numeric algorithm
// identifier (GTID) into the corresponding Algorithm.
//
// Returns a KsiInvalidArgumentError if the GTID does not correspond to one of the six
// algorithms the legacy format supports.
func LegacyAlgorithmByGTID(gtid byte) (Algorithm, error) {
	a := Algorithm(gtid)
	if !a.Defined() {
		return SHA_NA, errors.New(errors.KsiInvalidArgumentError).
			AppendMessage(fmt.Sprintf("unsupported algorithm GTID: %d", gtid))
	}
	for _, la := range legacyAlgorithms {
		if la.algo == a {
			return a, nil
		}
	}
	return SHA_NA, errors.New(errors.KsiInvalidArgumentError).
		AppendMessage(fmt.Sprintf("unsupported algorithm GTID: %d", gtid))
}

// LegacyOID returns the digest algorithm OID a legacy time-stamp token would use for a.
func (a Algorithm) LegacyOID() (asn1.ObjectIdentifier, error) {
	for _, la := range legacyAlgorithms {
		if la.algo == a {
			return la.oid, nil
		}
	}
	return nil, errors.New(errors.KsiInvalidArgumentError).
		AppendMessage(fmt.Sprintf("unsupported algorithm GTID: %d", byte(a)))
}
