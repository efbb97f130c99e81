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

import "github.com/guardtime/lsc/tlv"

// newLeaf builds a TLV whose value is content verbatim.
func newLeaf(tag uint16, content []byte) (*tlv.Tlv, error) {
	enc, err := tlv.NewEncoder()
	if err != nil {
		return nil, err
	}
	if _, err := enc.PrependBinary(content); err != nil {
		return nil, err
	}
	if _, err := enc.PrependHeader(tag, false, false, uint64(len(content))); err != nil {
		return nil, err
	}
	return tlv.NewTlv(tlv.ConstructFromSlice(enc.Bytes()))
}

// newNested builds a TLV whose value is the concatenation of the raw encoding of children,
// in order.
func newNested(tag uint16, children ...*tlv.Tlv) (*tlv.Tlv, error) {
	var content []byte
	for _, c := range children {
		if c == nil {
			continue
		}
		content = append(content, c.Raw...)
	}
	return newLeaf(tag, content)
}

// newUint builds a TLV carrying value as a minimal-length big-endian unsigned integer, the
// way every KSI integer element is encoded on the wire.
func newUint(tag uint16, value uint64) (*tlv.Tlv, error) {
	enc, err := tlv.NewEncoder()
	if err != nil {
		return nil, err
	}
	n, err := enc.PrependUint64(value)
	if err != nil {
		return nil, err
	}
	if _, err := enc.PrependHeader(tag, false, false, n); err != nil {
		return nil, err
	}
	return tlv.NewTlv(tlv.ConstructFromSlice(enc.Bytes()))
}
