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

package convert

import (
	"github.com/guardtime/lsc/cms"
	"github.com/guardtime/lsc/errors"
	"github.com/guardtime/lsc/hash"
	"github.com/guardtime/lsc/legacychain"
	"github.com/guardtime/lsc/tlv"
)

// TagSignature is pdu's registered element type for a complete KSI signature.
const TagSignature = 0x800

// TagRFC3161Record is pdu's registered element type for the RFC 3161 compatibility record.
const TagRFC3161Record = 0x806

const (
	tagAggrTime     = 0x2
	tagChainIdx     = 0x3
	tagInputHash    = 0x5
	tagTstPrefix    = 0x10
	tagTstSuffix    = 0x11
	tagTstAlgo      = 0x12
	tagSigAttrPre   = 0x13
	tagSigAttrSuf   = 0x14
	tagSigAttrAlgo  = 0x15
)

// Result is the converted signature, ready for serialisation via the tlv package.
type Result struct {
	Signature *tlv.Tlv // tag TagSignature
}

// Convert turns a fully parsed legacy time-stamp token into a KSI signature TLV.
func Convert(sig *cms.Signature) (*Result, error) {
	if sig == nil {
		return nil, errors.New(errors.KsiInvalidArgumentError)
	}

	inputHash, err := hashSignedAttrs(sig)
	if err != nil {
		return nil, err
	}

	aggrResult, err := legacychain.BuildAggregationChains(sig.Location, inputHash)
	if err != nil {
		return nil, errors.KsiErr(err).AppendMessage("Failed to convert aggregation hash chain.")
	}

	calResult, err := legacychain.BuildCalendarChain(sig.History, aggrResult.OutputHash, sig.Published.PublicationID)
	if err != nil {
		return nil, errors.KsiErr(err).AppendMessage("Failed to convert calendar hash chain.")
	}

	var content []byte
	for _, chain := range aggrResult.Chains {
		withTime, err := legacychain.AttachAggregationTime(chain, calResult.RegistrationTime)
		if err != nil {
			return nil, err
		}
		content = append(content, withTime.Raw...)
	}
	content = append(content, calResult.Chain.Raw...)

	rfc3161, err := buildRFC3161Record(sig, calResult.RegistrationTime, aggrResult.ChainIndices[0])
	if err != nil {
		return nil, err
	}
	content = append(content, rfc3161.Raw...)

	sigTlv, err := tlv.NewTlv(tlv.ConstructEmpty(TagSignature, false, false))
	if err != nil {
		return nil, err
	}
	if err := sigTlv.SetValue(content); err != nil {
		return nil, err
	}

	return &Result{Signature: sigTlv}, nil
}

// hashSignedAttrs computes the aggregation chain's starting input hash directly from the
// signed attribute set, independent of the byte-range capture kept for the RFC3161 record.
func hashSignedAttrs(sig *cms.Signature) (hash.Imprint, error) {
	hsr, err := sig.DigestAlgorithm.New()
	if err != nil {
		return nil, err
	}
	if _, err := hsr.Write(sig.SignedAttrsDER); err != nil {
		return nil, err
	}
	return hsr.Imprint()
}

func buildRFC3161Record(sig *cms.Signature, aggrTime uint64, chainIdx []uint64) (*tlv.Tlv, error) {
	var content []byte

	timeTlv, err := newUint(tagAggrTime, aggrTime)
	if err != nil {
		return nil, err
	}
	content = append(content, timeTlv.Raw...)

	for _, idx := range chainIdx {
		idxTlv, err := newUint(tagChainIdx, idx)
		if err != nil {
			return nil, err
		}
		content = append(content, idxTlv.Raw...)
	}

	inputTlv, err := newLeaf(tagInputHash, sig.DocumentHash)
	if err != nil {
		return nil, err
	}
	content = append(content, inputTlv.Raw...)

	prefixTlv, err := newLeaf(tagTstPrefix, sig.TSTInfoPrefix)
	if err != nil {
		return nil, err
	}
	content = append(content, prefixTlv.Raw...)

	suffixTlv, err := newLeaf(tagTstSuffix, sig.TSTInfoSuffix)
	if err != nil {
		return nil, err
	}
	content = append(content, suffixTlv.Raw...)

	tstAlgoTlv, err := newUint(tagTstAlgo, uint64(sig.DocumentHash.Algorithm()))
	if err != nil {
		return nil, err
	}
	content = append(content, tstAlgoTlv.Raw...)

	attrPreTlv, err := newLeaf(tagSigAttrPre, sig.SignedAttrsPrefix)
	if err != nil {
		return nil, err
	}
	content = append(content, attrPreTlv.Raw...)

	attrSufTlv, err := newLeaf(tagSigAttrSuf, sig.SignedAttrsSuffix)
	if err != nil {
		return nil, err
	}
	content = append(content, attrSufTlv.Raw...)

	attrAlgoTlv, err := newUint(tagSigAttrAlgo, uint64(sig.DigestAlgorithm))
	if err != nil {
		return nil, err
	}
	content = append(content, attrAlgoTlv.Raw...)

	return newLeaf(TagRFC3161Record, content)
}
