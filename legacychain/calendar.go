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

package legacychain

import (
	"github.com/guardtime/lsc/hash"
	"github.com/guardtime/lsc/tlv"
)

// TagCalendarChain is pdu's registered element type for the calendar hash chain.
const TagCalendarChain = 0x802

const (
	tagPublicationTime  = 0x1
	tagRegistrationTime = 0x2
)

// CalendarResult is the outcome of converting a legacy calendar hash chain blob into a KSI
// calendar chain TLV.
type CalendarResult struct {
	Chain            *tlv.Tlv // tagged TagCalendarChain
	RegistrationTime uint64   // the reconstructed 0x2 child's value, copied onto every aggregation chain
}

// BuildCalendarChain decodes history and emits the single KSI calendar chain TLV it
// represents, given the aggregation output hash and the calendar publication time this
// chain is anchored to.
func BuildCalendarChain(history []byte, inputHash hash.Imprint, publicationID uint64) (*CalendarResult, error) {
	links, err := decodeLinks(history, inputHash, false, false)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, formatError("Calendar hash chain is empty.")
	}

	reg, err := reconstructRegistrationTime(links, publicationID)
	if err != nil {
		return nil, err
	}

	pubTlv, err := newUint(tagPublicationTime, publicationID)
	if err != nil {
		return nil, err
	}
	inputTlv, err := newLeaf(tagInputHash, links[0].InputHash)
	if err != nil {
		return nil, err
	}

	content := append(append([]byte{}, pubTlv.Raw...), inputTlv.Raw...)
	for _, l := range links {
		linkTlv, err := newLeaf(l.Tag, l.SiblingImprint)
		if err != nil {
			return nil, err
		}
		content = append(content, linkTlv.Raw...)
	}

	regTlv, err := newUint(tagRegistrationTime, reg)
	if err != nil {
		return nil, err
	}
	content = append(content, regTlv.Raw...)

	chainTlv, err := newLeaf(TagCalendarChain, content)
	if err != nil {
		return nil, err
	}

	return &CalendarResult{Chain: chainTlv, RegistrationTime: reg}, nil
}

// reconstructRegistrationTime walks links from the root of the calendar tree (the last
// link) down to the leaf, accumulating the registration time the way
// pdu.CalendarChain.CalculateAggregationTime does for the read side, generalised here to a
// decoder-built link list: a left link (tag 0x7) is a pure descent, a right link (tag 0x8)
// both accumulates and descends.
func reconstructRegistrationTime(links []Link, publicationTime uint64) (uint64, error) {
	var (
		reg uint64
		p   = int64(publicationTime)
	)
	for i := len(links) - 1; i >= 0; i-- {
		if p <= 0 {
			return 0, formatError("Calendar hash chain shape is inconsistent with publication time")
		}
		hb := highBit(p)
		if links[i].Tag == TagLinkLeft {
			p = hb - 1
		} else {
			reg += uint64(hb)
			p -= hb
		}
	}
	if p != 0 {
		return 0, formatError("Calendar hash chain shape inconsistent with publication time")
	}
	return reg, nil
}

// highBit returns the value of the highest 1-bit in the binary representation of r.
func highBit(r int64) int64 {
	r |= r >> 1
	r |= r >> 2
	r |= r >> 4
	r |= r >> 8
	r |= r >> 16
	r |= r >> 32
	return r - (r >> 1)
}
