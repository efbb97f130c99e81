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
	"bytes"
	"encoding/asn1"
	"io"
	"io/ioutil"
	"math/big"
	"time"

	"github.com/guardtime/lsc/errors"
	"github.com/guardtime/lsc/hash"
)

var (
	oidSignedData      = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	oidTSTInfo         = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 4}
	oidContentType     = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 3}
	oidMessageDigest   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 4}
	oidSignatureAlgo   = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 27868, 4, 1}
)

// algorithmIdentifier mirrors X.509's AlgorithmIdentifier; Parameters is ignored.
type algorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

// header returns the header bytes (tag + length, no content) of a RawValue, sliced
// directly out of the original input buffer. FullBytes is always the original
// encoding as read by encoding/asn1 -- never a re-serialization -- so this never
// falls into the long-form-length reconstruction trap the legacy Java parser has.
func header(rv asn1.RawValue) []byte {
	return rv.FullBytes[:len(rv.FullBytes)-len(rv.Bytes)]
}

// next reads one DER TLV off the front of buf and returns it plus the remaining bytes.
func next(buf []byte) (asn1.RawValue, []byte, error) {
	var rv asn1.RawValue
	rest, err := asn1.Unmarshal(buf, &rv)
	if err != nil {
		return asn1.RawValue{}, nil, err
	}
	return rv, rest, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func concat(parts ...[]byte) []byte {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.Write(p)
	}
	return buf.Bytes()
}

// Parse reads a full legacy CMS/RFC 3161 time-stamp token from r and extracts every
// field the aggregation/calendar chain builders and the assembler need, including the
// two byte-exact capture ranges described in the package doc comment.
func Parse(r io.Reader) (*Signature, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errIo(err)
	}
	if len(data) == 0 {
		return nil, argError("Invalid argument: empty input.")
	}
	return ParseBytes(data)
}

// ParseBytes is the byte-slice entry point behind Parse.
func ParseBytes(data []byte) (*Signature, error) {
	ci, err := parseContentInfo(data)
	if err != nil {
		return nil, err
	}

	sig := &Signature{}

	signerInfo, tstInfoDER, err := parseSignedData(ci)
	if err != nil {
		return nil, err
	}
	if err := fillFromSignerInfo(sig, signerInfo); err != nil {
		return nil, err
	}
	if err := fillFromTstInfo(sig, tstInfoDER); err != nil {
		return nil, err
	}
	return sig, nil
}

func errIo(err error) error {
	return errors.KsiErr(err, errors.KsiIoError).AppendMessage("Unable to read time-stamp token.")
}

// parseContentInfo unwraps ContentInfo ::= SEQUENCE { contentType OID, content [0] EXPLICIT ANY }
// and returns the raw bytes of the wrapped SignedData.
func parseContentInfo(data []byte) ([]byte, error) {
	var outer asn1.RawValue
	_, err := asn1.Unmarshal(data, &outer)
	if err != nil {
		return nil, wrapFormat("content info", err)
	}
	buf := outer.Bytes

	contentTypeRaw, buf, err := next(buf)
	if err != nil {
		return nil, wrapFormat("content info", err)
	}
	var contentType asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(contentTypeRaw.FullBytes, &contentType); err != nil {
		return nil, wrapFormat("content info", err)
	}
	if !contentType.Equal(oidSignedData) {
		return nil, formatErrorf("unsupported content type: %s", contentType.String())
	}

	explicitWrapper, _, err := next(buf)
	if err != nil {
		return nil, wrapFormat("content info", err)
	}
	// explicitWrapper.Bytes is the full DER encoding of the wrapped SignedData SEQUENCE
	// (EXPLICIT tagging: the content of the wrapper *is* the inner element's own TLV).
	return explicitWrapper.Bytes, nil
}

// parseSignedData walks SignedData ::= SEQUENCE { version, digestAlgorithms SET OF …,
// encapContentInfo, certificates [0] IMPLICIT OPTIONAL, crls [1] IMPLICIT OPTIONAL,
// signerInfos SET OF SignerInfo }. Returns the sole SignerInfo's raw bytes and the raw
// TSTInfo DER extracted from encapContentInfo.
func parseSignedData(signedDataDER []byte) (signerInfoDER []byte, tstInfoDER []byte, err error) {
	var sd asn1.RawValue
	if _, err = asn1.Unmarshal(signedDataDER, &sd); err != nil {
		return nil, nil, wrapFormat("signed data", err)
	}
	buf := sd.Bytes

	var version int
	if buf, err = asn1UnmarshalOne(buf, &version); err != nil {
		return nil, nil, wrapFormat("signed data", err)
	}
	if version != 3 {
		return nil, nil, formatErrorf("invalid signed data version: %d", version)
	}

	// digestAlgorithms SET OF AlgorithmIdentifier -- every entry must be one of the legacy
	// digest algorithms. Whether SignerInfo's own digest algorithm appears in this set is
	// not checked (see DESIGN.md, matching the legacy implementation's observed behaviour).
	var digestAlgos asn1.RawValue
	if digestAlgos, buf, err = next(buf); err != nil {
		return nil, nil, wrapFormat("signed data", err)
	}
	for rest := digestAlgos.Bytes; len(rest) > 0; {
		var algID algorithmIdentifier
		if rest, err = asn1.Unmarshal(rest, &algID); err != nil {
			return nil, nil, wrapFormat("signed data", err)
		}
		if _, err = hash.LegacyAlgorithmByOID(algID.Algorithm); err != nil {
			return nil, nil, err
		}
	}

	var encapRaw asn1.RawValue
	if encapRaw, buf, err = next(buf); err != nil {
		return nil, nil, wrapFormat("signed data", err)
	}
	if tstInfoDER, err = parseEncapContentInfo(encapRaw); err != nil {
		return nil, nil, err
	}

	// Skip optional certificates [0] and crls [1], find the mandatory signerInfos SET.
	var signerInfos asn1.RawValue
	for {
		var rv asn1.RawValue
		if rv, buf, err = next(buf); err != nil {
			return nil, nil, wrapFormat("signed data", err)
		}
		if rv.Class == asn1.ClassContextSpecific && (rv.Tag == 0 || rv.Tag == 1) {
			continue
		}
		if rv.Class == asn1.ClassUniversal && rv.Tag == asn1.TagSet {
			signerInfos = rv
			break
		}
		return nil, nil, formatError("signed data has invalid format")
	}

	first, rest, err := next(signerInfos.Bytes)
	if err != nil {
		return nil, nil, wrapFormat("signed data", err)
	}
	if len(rest) != 0 {
		return nil, nil, formatError("expecting exactly one signer info")
	}
	return first.FullBytes, tstInfoDER, nil
}

// parseEncapContentInfo unwraps EncapsulatedContentInfo ::= SEQUENCE { eContentType OID,
// eContent [0] EXPLICIT OCTET STRING OPTIONAL } and returns the DER bytes of the TSTInfo
// carried inside the OCTET STRING.
func parseEncapContentInfo(encapRaw asn1.RawValue) ([]byte, error) {
	buf := encapRaw.Bytes
	eContentTypeRaw, buf, err := next(buf)
	if err != nil {
		return nil, wrapFormat("signed data", err)
	}
	var eContentType asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(eContentTypeRaw.FullBytes, &eContentType); err != nil {
		return nil, wrapFormat("signed data", err)
	}
	if !eContentType.Equal(oidTSTInfo) {
		return nil, formatErrorf("unsupported encapsulated content type: %s", eContentType.String())
	}

	wrapper, _, err := next(buf)
	if err != nil {
		return nil, formatError("missing TST info content")
	}
	// wrapper.Bytes is the EXPLICIT-tagged inner OCTET STRING's own full DER; its
	// content is, by convention, the DER encoding of TSTInfo.
	var octet asn1.RawValue
	if _, err := asn1.Unmarshal(wrapper.Bytes, &octet); err != nil {
		return nil, wrapFormat("TST info", err)
	}
	return octet.Bytes, nil
}

// signerInfoParsed carries the fields fillFromSignerInfo needs from the raw SignerInfo.
type signerInfoParsed struct {
	digestAlgo        hash.Algorithm
	signedAttrsDER    []byte
	signedAttrsPrefix []byte
	signedAttrsSuffix []byte
	timeSignatureDER  []byte
}

func parseSignedDataSignerInfo(signerInfoDER []byte) (*signerInfoParsed, error) {
	var si asn1.RawValue
	if _, err := asn1.Unmarshal(signerInfoDER, &si); err != nil {
		return nil, wrapFormat("signer info", err)
	}
	buf := si.Bytes

	var version int
	var err error
	if buf, err = asn1UnmarshalOne(buf, &version); err != nil {
		return nil, wrapFormat("signer info", err)
	}
	if version != 1 {
		return nil, formatErrorf("invalid signer info version: %d", version)
	}

	// sid IssuerAndSerialNumber -- presence only, not otherwise used.
	if _, buf, err = next(buf); err != nil {
		return nil, wrapFormat("signer info", err)
	}

	var digestAlgoRaw asn1.RawValue
	if digestAlgoRaw, buf, err = next(buf); err != nil {
		return nil, wrapFormat("signer info", err)
	}
	var digestAlgID algorithmIdentifier
	if _, err := asn1.Unmarshal(digestAlgoRaw.FullBytes, &digestAlgID); err != nil {
		return nil, wrapFormat("signer info", err)
	}
	digestAlgo, err := hash.LegacyAlgorithmByOID(digestAlgID.Algorithm)
	if err != nil {
		return nil, err
	}

	sigAttrsRaw, buf, err := next(buf)
	if err != nil {
		return nil, wrapFormat("signer info", err)
	}
	if sigAttrsRaw.Class != asn1.ClassContextSpecific || sigAttrsRaw.Tag != 0 {
		return nil, formatError("no signed attributes")
	}
	signedAttrsDER, prefix, suffix, err := captureSignedAttrs(sigAttrsRaw)
	if err != nil {
		return nil, err
	}

	var sigAlgoRaw asn1.RawValue
	if sigAlgoRaw, buf, err = next(buf); err != nil {
		return nil, wrapFormat("signer info", err)
	}
	var sigAlgID algorithmIdentifier
	if _, err := asn1.Unmarshal(sigAlgoRaw.FullBytes, &sigAlgID); err != nil {
		return nil, wrapFormat("signer info", err)
	}
	if !sigAlgID.Algorithm.Equal(oidSignatureAlgo) {
		return nil, formatErrorf("invalid signature algorithm: %s", sigAlgID.Algorithm.String())
	}

	var sigValueRaw asn1.RawValue
	if sigValueRaw, buf, err = next(buf); err != nil {
		return nil, wrapFormat("signer info", err)
	}
	_ = buf // optional unsignedAttrs, if present, are not needed downstream.

	return &signerInfoParsed{
		digestAlgo:        digestAlgo,
		signedAttrsDER:    signedAttrsDER,
		signedAttrsPrefix: prefix,
		signedAttrsSuffix: suffix,
		timeSignatureDER:  sigValueRaw.Bytes,
	}, nil
}

// captureSignedAttrs re-tags the [0] IMPLICIT signed-attribute SET as a universal SET
// (the form the message digest is computed over, per RFC 5652 §5.4) and captures the
// byte ranges bracketing the message-digest attribute's value.
func captureSignedAttrs(sigAttrsRaw asn1.RawValue) (der, prefix, suffix []byte, err error) {
	origHeader := header(sigAttrsRaw)
	newHeader := append([]byte{0x31}, clone(origHeader[1:])...)
	der = concat(newHeader, sigAttrsRaw.Bytes)

	attr0, rest, err := next(sigAttrsRaw.Bytes)
	if err != nil {
		return nil, nil, nil, wrapFormat("signer info", err)
	}
	if err := checkAttributeType(attr0, oidContentType); err != nil {
		return nil, nil, nil, formatError("invalid content-type signed attribute value")
	}

	attr1, rest, err := next(rest)
	if err != nil {
		return nil, nil, nil, wrapFormat("signer info", err)
	}
	if err := checkAttributeType(attr1, oidMessageDigest); err != nil {
		return nil, nil, nil, formatError("invalid message-digest signed attribute")
	}
	attr1Header := header(attr1)
	oidRaw, attr1Rest, err := next(attr1.Bytes)
	if err != nil {
		return nil, nil, nil, wrapFormat("signer info", err)
	}
	setRaw, _, err := next(attr1Rest)
	if err != nil {
		return nil, nil, nil, wrapFormat("signer info", err)
	}
	setHeader := header(setRaw)
	octRaw, _, err := next(setRaw.Bytes)
	if err != nil {
		return nil, nil, nil, wrapFormat("signer info", err)
	}
	octHeader := header(octRaw)

	prefix = concat(newHeader, attr0.FullBytes, attr1Header, oidRaw.FullBytes, setHeader, octHeader)
	suffix = clone(rest)
	return der, prefix, suffix, nil
}

func checkAttributeType(attr asn1.RawValue, wantType asn1.ObjectIdentifier) error {
	oidRaw, _, err := next(attr.Bytes)
	if err != nil {
		return err
	}
	var oid asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(oidRaw.FullBytes, &oid); err != nil {
		return err
	}
	if !oid.Equal(wantType) {
		return formatErrorf("unexpected attribute type: %s", oid.String())
	}
	return nil
}

func fillFromSignerInfo(sig *Signature, signerInfoDER []byte) error {
	si, err := parseSignedDataSignerInfo(signerInfoDER)
	if err != nil {
		return err
	}
	sig.DigestAlgorithm = si.digestAlgo
	sig.SignedAttrsDER = si.signedAttrsDER
	sig.SignedAttrsPrefix = si.signedAttrsPrefix
	sig.SignedAttrsSuffix = si.signedAttrsSuffix

	return fillFromTimeSignature(sig, si.timeSignatureDER)
}

// timeSignature ::= SEQUENCE { location OCTET STRING, history OCTET STRING,
// publishedData PublishedData, pkSignature [0] SignatureData OPTIONAL,
// pubReference [1] SET OF OCTET STRING OPTIONAL }
// publishedData ::= SEQUENCE { publicationIdentifier INTEGER, publicationImprint OCTET STRING }
func fillFromTimeSignature(sig *Signature, timeSignatureDER []byte) error {
	var ts asn1.RawValue
	if _, err := asn1.Unmarshal(timeSignatureDER, &ts); err != nil {
		return wrapFormat("time signature", err)
	}
	buf := ts.Bytes

	locationRaw, buf, err := next(buf)
	if err != nil {
		return wrapFormat("time signature", err)
	}
	historyRaw, buf, err := next(buf)
	if err != nil {
		return wrapFormat("time signature", err)
	}
	pubDataRaw, buf, err := next(buf)
	if err != nil {
		return wrapFormat("time signature", err)
	}

	pdBuf := pubDataRaw.Bytes
	pubIDRaw, pdBuf, err := next(pdBuf)
	if err != nil {
		return wrapFormat("time signature", err)
	}
	var pubID *big.Int
	if _, err := asn1.Unmarshal(pubIDRaw.FullBytes, &pubID); err != nil {
		return wrapFormat("time signature", err)
	}
	if !pubID.IsUint64() {
		return formatError("publication identifier does not fit in 64 bits")
	}
	pubImprintRaw, _, err := next(pdBuf)
	if err != nil {
		return wrapFormat("time signature", err)
	}

	sig.Location = clone(locationRaw.Bytes)
	sig.History = clone(historyRaw.Bytes)
	sig.Published = PublishedData{
		PublicationID:      pubID.Uint64(),
		PublicationImprint: hash.Imprint(clone(pubImprintRaw.Bytes)),
	}
	sig.Extended = true
	if len(buf) > 0 {
		if rv, _, err := next(buf); err == nil && rv.Class == asn1.ClassContextSpecific && rv.Tag == 0 {
			sig.Extended = false
		}
	}
	return nil
}

func fillFromTstInfo(sig *Signature, tstInfoDER []byte) error {
	var tst asn1.RawValue
	if _, err := asn1.Unmarshal(tstInfoDER, &tst); err != nil {
		return wrapFormat("TST info", err)
	}
	tstHeader := header(tst)
	buf := tst.Bytes

	versionRaw, buf, err := next(buf)
	if err != nil {
		return wrapFormat("TST info", err)
	}
	var version int
	if _, err := asn1.Unmarshal(versionRaw.FullBytes, &version); err != nil {
		return wrapFormat("TST info", err)
	}
	if version != 1 {
		return formatErrorf("invalid TST info version: %d", version)
	}

	policyRaw, buf, err := next(buf)
	if err != nil {
		return wrapFormat("TST info", err)
	}

	miRaw, buf, err := next(buf)
	if err != nil {
		return wrapFormat("TST info", err)
	}
	miHeader := header(miRaw)
	miBuf := miRaw.Bytes

	algoRaw, miBuf, err := next(miBuf)
	if err != nil {
		return wrapFormat("TST info", err)
	}
	var algID algorithmIdentifier
	if _, err := asn1.Unmarshal(algoRaw.FullBytes, &algID); err != nil {
		return wrapFormat("TST info", err)
	}
	documentAlgo, err := hash.LegacyAlgorithmByOID(algID.Algorithm)
	if err != nil {
		return err
	}

	hashedMsgRaw, _, err := next(miBuf)
	if err != nil {
		return wrapFormat("TST info", err)
	}
	hashedMsgHeader := header(hashedMsgRaw)

	sig.TSTInfoPrefix = concat(tstHeader, versionRaw.FullBytes, policyRaw.FullBytes, miHeader, algoRaw.FullBytes, hashedMsgHeader)
	sig.TSTInfoSuffix = clone(buf)
	sig.DocumentHash = hash.Imprint(concat([]byte{byte(documentAlgo)}, hashedMsgRaw.Bytes))

	fillDiagnostics(sig, buf)
	return nil
}

// asn1UnmarshalOne decodes a single value off the front of buf into v and returns what
// remains.
func asn1UnmarshalOne(buf []byte, v interface{}) ([]byte, error) {
	return asn1.Unmarshal(buf, v)
}

// fillDiagnostics best-effort decodes the TSTInfo fields following hashedMessage. None
// of these feed the conversion itself (see SPEC_FULL.md §4.1's "Supplemented fields");
// a field is left at its zero value if the input doesn't have the expected shape.
func fillDiagnostics(sig *Signature, buf []byte) {
	defer func() { recover() }() //nolint: this walk is diagnostic-only and never load-bearing.

	rv, rest, err := next(buf)
	if err != nil {
		return
	}
	if rv.Class == asn1.ClassUniversal && rv.Tag == asn1.TagInteger {
		var v *big.Int
		if _, err := asn1.Unmarshal(rv.FullBytes, &v); err == nil {
			sig.SerialNumber = v
		}
		rv, rest, err = next(rest)
		if err != nil {
			return
		}
	}
	if rv.Class == asn1.ClassUniversal && (rv.Tag == 23 || rv.Tag == 24) {
		var t time.Time
		if _, err := asn1.Unmarshal(rv.FullBytes, &t); err == nil {
			sig.GenTime = t
		}
		rv, rest, err = next(rest)
		if err != nil {
			return
		}
	}
	if rv.Class == asn1.ClassUniversal && rv.Tag == asn1.TagSequence {
		sig.Accuracy = parseAccuracy(rv.Bytes)
		rv, rest, err = next(rest)
		if err != nil {
			return
		}
	}
	if rv.Class == asn1.ClassUniversal && rv.Tag == asn1.TagBoolean {
		var b bool
		if _, err := asn1.Unmarshal(rv.FullBytes, &b); err == nil {
			sig.Ordering = b
		}
		if _, rest, err = next(rest); err != nil {
			return
		}
	}
}

func parseAccuracy(buf []byte) *Accuracy {
	a := &Accuracy{}
	for len(buf) > 0 {
		rv, rest, err := next(buf)
		if err != nil {
			return a
		}
		der := rv.FullBytes
		if rv.Class == asn1.ClassContextSpecific {
			// millis [0] and micros [1] are IMPLICIT INTEGERs: re-tag as a universal INTEGER.
			der = append([]byte{0x02}, der[1:]...)
		}
		var v int
		if _, err := asn1.Unmarshal(der, &v); err == nil {
			switch {
			case rv.Class == asn1.ClassUniversal:
				a.Seconds = v
			case rv.Tag == 0:
				a.Millis = v
			case rv.Tag == 1:
				a.Micros = v
			}
		}
		buf = rest
	}
	return a
}
