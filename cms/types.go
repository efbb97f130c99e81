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

package cms

import (
	"math/big"
	"time"

	"github.com/guardtime/lsc/hash"
)

// Accuracy mirrors the RFC 3161 Accuracy structure. Diagnostic only; not consumed by
// the aggregation/calendar chain builders.
type Accuracy struct {
	Seconds int
	Millis  int
	Micros  int
}

// PublishedData is the vendor structure binding a calendar publication time to the
// publication hash it commits to.
type PublishedData struct {
	PublicationID     uint64
	PublicationImprint hash.Imprint
}

// Signature is the fully parsed, byte-range-annotated legacy time-stamp token.
type Signature struct {
	// DigestAlgorithm is the digest algorithm SignerInfo used to hash the signed attributes.
	DigestAlgorithm hash.Algorithm

	// SignedAttrsDER is the full DER encoding of the signed attribute set, re-tagged from
	// its CMS [0] IMPLICIT form to the universal SET tag the digest is computed over.
	SignedAttrsDER []byte
	// SignedAttrsPrefix and SignedAttrsSuffix bracket the message-digest attribute's raw
	// value within SignedAttrsDER: SignedAttrsPrefix + <value bytes> + SignedAttrsSuffix
	// reproduces SignedAttrsDER exactly.
	SignedAttrsPrefix []byte
	SignedAttrsSuffix []byte

	// Location is the aggregation hash chain blob (TimeSignature.location).
	Location []byte
	// History is the calendar hash chain blob (TimeSignature.history).
	History []byte
	// Published is the calendar publication this token was anchored to.
	Published PublishedData
	// Extended reports whether the legacy token has already had its PKI signature
	// stripped (true ⇔ pkSignature is absent); diagnostic only.
	Extended bool

	// DocumentHash is the document imprint from TSTInfo.messageImprint.
	DocumentHash hash.Imprint

	// TSTInfoPrefix and TSTInfoSuffix bracket the hashedMessage field's raw
	// digest bytes within the original TSTInfo DER encoding.
	TSTInfoPrefix []byte
	TSTInfoSuffix []byte

	// Diagnostic-only fields, not required by the transcoder's own invariants.
	SerialNumber *big.Int
	GenTime      time.Time
	Accuracy     *Accuracy
	Ordering     bool
	Nonce        *big.Int
}
