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

// TagAggregationChain is pdu's registered element type for one aggregation hash chain.
const TagAggregationChain = 0x801

const (
	tagAggrTime  = 0x2
	tagInputHash = 0x5
	tagAggrAlgo  = 0x6
	tagChainIdx  = 0x3
)

// Gateway levels at which a legacy aggregation chain blob is split into several KSI
// aggregation chain TLVs: state, national and top level clusters of the vendor's
// aggregation network.
const (
	gatewayState    = 19
	gatewayNational = 39
	gatewayTop      = 60
)

func isGatewayLevel(level byte) bool {
	return level == gatewayState || level == gatewayNational || level == gatewayTop
}

// AggregationResult is the outcome of converting a legacy aggregation hash chain blob into
// one or more KSI aggregation chain TLVs.
type AggregationResult struct {
	// Chains holds every emitted chain TLV (tag TagAggregationChain) in blob order:
	// Chains[0] is closest to the document, the last entry closest to the calendar.
	Chains []*tlv.Tlv
	// ChainIndices holds the chain-index values attached to each entry of Chains, in the
	// same order they were appended as children (the chain's own index last).
	ChainIndices [][]uint64
	// OutputHash is the result hash of the last link of the last chain, the value fed to
	// the calendar chain builder as its input hash.
	OutputHash hash.Imprint
}

// BuildAggregationChains decodes location and emits the KSI aggregation chain TLVs it
// represents. inputHash is the pre-hashed digest of the signed attributes (see the
// package doc and §4.2's extra-hash rule, applied once to the very first link).
func BuildAggregationChains(location []byte, inputHash hash.Imprint) (*AggregationResult, error) {
	links, err := decodeLinks(location, inputHash, true, true)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, formatError("Aggregation hash chain is empty.")
	}

	groups := splitAtGateways(links)

	chainContent := make([][]byte, len(groups))
	for i, g := range groups {
		content, err := buildAggregationChainBody(g)
		if err != nil {
			return nil, err
		}
		chainContent[i] = content
	}

	chains := make([]*tlv.Tlv, len(groups))
	indices := make([][]uint64, len(groups))
	var (
		accumulator    []byte
		accumulatedIdx []uint64
	)
	for i := len(groups) - 1; i >= 0; i-- {
		idx, err := chainShape(groups[i])
		if err != nil {
			return nil, err
		}
		idxTlv, err := newUint(tagChainIdx, idx)
		if err != nil {
			return nil, err
		}
		accumulator = append(accumulator, idxTlv.Raw...)
		accumulatedIdx = append(accumulatedIdx, idx)
		indices[i] = append([]uint64{}, accumulatedIdx...)

		chainTlv, err := newLeaf(TagAggregationChain, append(append([]byte{}, chainContent[i]...), accumulator...))
		if err != nil {
			return nil, err
		}
		chains[i] = chainTlv
	}

	last := links[len(links)-1]
	return &AggregationResult{Chains: chains, ChainIndices: indices, OutputHash: last.ResultHash}, nil
}

// splitAtGateways groups the flat, already hash-stepped link list into chains, closing the
// current chain and opening a new one whenever the next link's level is a gateway level and
// the current chain already holds at least one link.
func splitAtGateways(links []Link) [][]Link {
	var (
		groups  [][]Link
		current []Link
	)
	for _, l := range links {
		if len(current) > 0 && isGatewayLevel(l.Level) {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, l)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// buildAggregationChainBody serialises one chain's input-hash, algorithm and link children,
// without the chain-index children attached by the caller.
func buildAggregationChainBody(links []Link) ([]byte, error) {
	inputTlv, err := newLeaf(tagInputHash, links[0].InputHash)
	if err != nil {
		return nil, err
	}
	algoTlv, err := newUint(tagAggrAlgo, uint64(links[0].Algo))
	if err != nil {
		return nil, err
	}

	content := append(append([]byte{}, inputTlv.Raw...), algoTlv.Raw...)
	for _, l := range links {
		linkTlv, err := buildAggregationLink(l)
		if err != nil {
			return nil, err
		}
		content = append(content, linkTlv.Raw...)
	}
	return content, nil
}

// buildAggregationLink builds one 0x7/0x8-tagged link TLV: an optional level-correction
// child followed by the sibling, wrapped as tag 0x2 for every algorithm except SHA-224
// (legacy ID), which uses tag 0x3 with the exact same 29-byte content.
func buildAggregationLink(l Link) (*tlv.Tlv, error) {
	var children []*tlv.Tlv
	if l.LevelCorrection > 0 {
		corr, err := newUint(tagLevelCorrection, uint64(l.LevelCorrection))
		if err != nil {
			return nil, err
		}
		children = append(children, corr)
	}

	siblingTag := uint16(tagSiblingHash)
	if l.SiblingAlgo == hash.SHA2_224 {
		siblingTag = tagSiblingLegacyID
	}
	sibling, err := newLeaf(siblingTag, l.SiblingImprint)
	if err != nil {
		return nil, err
	}
	children = append(children, sibling)

	return newNested(l.Tag, children...)
}

// chainShape computes the reverse bit-walk chain index for one chain's links, the same
// computation as pdu.AggregationChain.CalculateShape generalised to a decoder-built link
// list instead of a builder-populated ChainLink slice.
func chainShape(links []Link) (uint64, error) {
	if len(links) == 0 {
		return 0, formatError("Aggregation hash chain is empty.")
	}
	var idx uint64 = 1
	for i := len(links) - 1; i >= 0; i-- {
		idx <<= 1
		if links[i].Tag == TagLinkLeft {
			idx |= 1
		}
	}
	return idx, nil
}

// AttachAggregationTime returns a copy of chain with an aggregation-time child (tag 0x2)
// prepended to its content. The calendar chain's reconstructed registration time becomes
// every aggregation chain's aggregation time once both chains are built.
func AttachAggregationTime(chain *tlv.Tlv, t uint64) (*tlv.Tlv, error) {
	timeTlv, err := newUint(tagAggrTime, t)
	if err != nil {
		return nil, err
	}
	content := append(append([]byte{}, timeTlv.Raw...), chain.Value()...)
	return newLeaf(TagAggregationChain, content)
}
