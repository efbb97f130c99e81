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

// Package legacychain decodes the compact hash-chain link encoding used by legacy
// (vendor RFC 3161) time-stamp tokens and builds the two KSI TLV chains derived from it:
// the aggregation hash chain (possibly split across several TLV elements at well-known
// level boundaries) and the calendar hash chain (a single TLV element plus a derived
// registration time).
//
// Both chains share one on-wire link layout and one hash-step fold; they differ only in
// how a decoded link is re-expressed as TLV (see BuildAggregationChains and
// BuildCalendarChain) and in what level constraint, if any, applies.
//
// Wire-direction-to-TLV-tag mapping: a raw direction byte of 0 is a right link (KSI tag
// 0x08, folded as sibling then input) and 1 is a left link (tag 0x07, folded as input
// then sibling). The tag numbers match pdu's own "ChainLinkL"/"ChainLinkR" templates
// (registered at 0x07/0x08), so a chain built here parses back through pdu unchanged.
package legacychain
