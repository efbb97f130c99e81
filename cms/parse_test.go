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
	"strings"
	"testing"
)

// derLen encodes a DER short-form length; every fixture below stays well under 128 bytes.
func derLen(n int) []byte {
	if n >= 0x80 {
		panic("derLen: long-form length not supported by this test helper")
	}
	return []byte{byte(n)}
}

func derTLV(tag byte, content []byte) []byte {
	return append(append([]byte{tag}, derLen(len(content))...), content...)
}

func derOctetString(b []byte) []byte { return derTLV(0x04, b) }
func derInteger1(v byte) []byte      { return derTLV(0x02, []byte{v}) }
func derSequence(parts ...[]byte) []byte {
	var content []byte
	for _, p := range parts {
		content = append(content, p...)
	}
	return derTLV(0x30, content)
}
func derContext0(b []byte) []byte { return derTLV(0xa0, b) }

// timeSignatureDER builds a minimal timeSignature ::= SEQUENCE { location OCTET STRING,
// history OCTET STRING, publishedData PublishedData, ... } DER encoding, optionally
// followed by a pkSignature [0] element.
func timeSignatureDER(withPkSignature bool) []byte {
	pubData := derSequence(derInteger1(0x01), derOctetString([]byte{0xaa, 0xbb}))
	parts := []([]byte){
		derOctetString([]byte{0x01, 0x02, 0x03}),
		derOctetString([]byte{0x04, 0x05, 0x06}),
		pubData,
	}
	if withPkSignature {
		parts = append(parts, derContext0([]byte{0xca, 0xfe}))
	}
	return derSequence(parts...)
}

// TestUnitExtendedTrueWhenPkSignatureAbsent is a regression test for the extended-flag
// inversion: a legacy token that no longer carries a PKI signature (nothing left to read
// after publishedData) must come out Extended == true, matching the original
// isExtended() semantics (extended iff pkSignature is absent).
func TestUnitExtendedTrueWhenPkSignatureAbsent(t *testing.T) {
	sig := &Signature{}
	if err := fillFromTimeSignature(sig, timeSignatureDER(false)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !sig.Extended {
		t.Error("Expected Extended == true when pkSignature is absent.")
	}
}

func TestUnitExtendedFalseWhenPkSignaturePresent(t *testing.T) {
	sig := &Signature{}
	if err := fillFromTimeSignature(sig, timeSignatureDER(true)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig.Extended {
		t.Error("Expected Extended == false when pkSignature is present.")
	}
}

func TestUnitParseBytesNonLegacyInput(t *testing.T) {
	_, err := ParseBytes([]byte("this is plain text, not a CMS time-stamp token at all"))
	if err == nil || !strings.Contains(err.Error(), "content info has invalid format") {
		t.Fatalf("Expected a content-info format error, got: %v", err)
	}
}

func TestUnitParseEmptyInput(t *testing.T) {
	if _, err := ParseBytes(nil); err == nil {
		t.Fatal("Expected an error for empty input.")
	}
}
