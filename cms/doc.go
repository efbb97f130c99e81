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

// Package cms reads a legacy RFC 3161 time-stamp token (a CMS ContentInfo carrying a
// vendor TimeSignature in place of an ordinary PKI signature) and extracts, byte-exact,
// the fields the conversion to a keyless signature needs.
//
// Two regions of the DER encoding are captured verbatim rather than re-decoded: the bytes
// of TSTInfo surrounding its MessageImprint.hashedMessage field, and the bytes of the
// CMS SignedAttributes surrounding the message-digest attribute's value. Both captures
// slice the original input buffer directly (via encoding/asn1's RawValue.FullBytes) and
// never reconstruct a header from a re-encoded copy, which is what makes the legacy Java
// implementation's equivalent routine (Asn1Util.getASN1ObjectHeader) unsafe for
// multi-byte DER lengths.
package cms
