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
	"fmt"

	"github.com/guardtime/lsc/errors"
	"github.com/guardtime/lsc/hash"
)

const (
	// TagLinkLeft and TagLinkRight are the two possible link TLV tags, resolved from the
	// wire direction byte as documented in the package comment. These match the KSI TLV
	// convention used elsewhere in this module (pdu's "ChainLinkL"/"ChainLinkR" templates,
	// registered at 0x07/0x08 respectively): 0x07 is the left link, 0x08 the right link.
	// The legacy wire format's direction byte maps onto them in the opposite numeric
	// order: direction 0 resolves to the right link (0x08, folded sibling then input),
	// direction 1 to the left link (0x07, folded input then sibling).
	TagLinkLeft  = 0x7
	TagLinkRight = 0x8

	tagLevelCorrection = 0x1
	tagSiblingHash     = 0x2
	tagSiblingLegacyID = 0x3

	legacyIDStrLenMax = 25
)

// Link is one decoded hash-chain step.
type Link struct {
	Algo           hash.Algorithm
	Tag            uint16 // TagLinkLeft or TagLinkRight
	SiblingAlgo    hash.Algorithm
	SiblingImprint hash.Imprint // full 1+n byte imprint, as read from the wire
	Level          byte
	// LevelCorrection is Level minus the previous link's Level minus one: the KSI
	// "level correction" value, zero when the tree height increases by exactly one at
	// this link. Only meaningful for aggregation chain links.
	LevelCorrection byte
	InputHash       hash.Imprint
	ResultHash      hash.Imprint
}

func formatError(msg string) error {
	return errors.New(errors.KsiInvalidFormatError).AppendMessage(msg)
}

func errDirection(direction byte) string {
	return fmt.Sprintf("Invalid hash step direction: %d", direction)
}

func errLevel(level byte) string {
	return fmt.Sprintf("Invalid hash step level: %d", level)
}

// decodeLinks reads every link out of blob, hash-stepping as it goes. inputHash is the
// chain's starting hash; enforceLevel requires each link's level to strictly increase
// (the aggregation chain's rule; the calendar chain has no level constraint).
//
// extraHashFirst, when set, re-hashes inputHash's own imprint bytes under the first
// link's algorithm before using it as that link's input -- the aggregation chain's rule
// that the caller's input hash is hashed once more before entering the chain; the
// calendar chain uses the caller's input hash verbatim and passes false.
func decodeLinks(blob []byte, inputHash hash.Imprint, enforceLevel, extraHashFirst bool) ([]Link, error) {
	var (
		links     []Link
		buf       = blob
		input     = inputHash
		prevLevel byte
	)

	if len(buf) == 0 {
		return nil, formatError("No links found in aggregation hash chain.")
	}

	for len(buf) > 0 {
		algo, err := hash.LegacyAlgorithmByGTID(buf[0])
		if err != nil {
			return nil, err
		}
		buf = buf[1:]

		if len(links) == 0 && extraHashFirst {
			hsr, err := algo.New()
			if err != nil {
				return nil, err
			}
			if _, err := hsr.Write(input); err != nil {
				return nil, err
			}
			if input, err = hsr.Imprint(); err != nil {
				return nil, err
			}
		}

		if len(buf) == 0 {
			return nil, formatError("Invalid link, end of stream after algorithm byte.")
		}
		direction := buf[0]
		buf = buf[1:]
		var tag uint16
		switch direction {
		case 0:
			tag = TagLinkRight
		case 1:
			tag = TagLinkLeft
		default:
			return nil, errors.New(errors.KsiInvalidFormatError).
				AppendMessage(errDirection(direction))
		}

		if len(buf) == 0 {
			return nil, formatError("Invalid link, end of stream after direction byte.")
		}
		siblingAlgo, err := hash.LegacyAlgorithmByGTID(buf[0])
		if err != nil {
			return nil, err
		}
		hashLen := siblingAlgo.Size()
		if len(buf) < 1+hashLen {
			return nil, formatError("Invalid link, not enough data for hash imprint.")
		}
		siblingImprint := make(hash.Imprint, 1+hashLen)
		copy(siblingImprint, buf[:1+hashLen])
		buf = buf[1+hashLen:]

		if siblingAlgo == hash.SHA2_224 {
			if err := validateLegacyID(siblingImprint); err != nil {
				return nil, err
			}
		}

		if len(buf) == 0 {
			return nil, formatError("Invalid link, end of stream after hash imprint.")
		}
		level := buf[0]
		buf = buf[1:]

		if enforceLevel && level <= prevLevel && len(links) > 0 {
			return nil, errors.New(errors.KsiInvalidFormatError).AppendMessage(errLevel(level))
		}

		resultHash, err := hashStep(algo, tag, siblingImprint, input, level)
		if err != nil {
			return nil, err
		}

		links = append(links, Link{
			Algo:            algo,
			Tag:             tag,
			SiblingAlgo:     siblingAlgo,
			SiblingImprint:  siblingImprint,
			Level:           level,
			LevelCorrection: level - prevLevel - 1,
			InputHash:       input,
			ResultHash:      resultHash,
		})

		input = resultHash
		prevLevel = level
	}

	return links, nil
}

// hashStep folds sibling and input, in the order the link's tag selects, together with
// the level byte, under algo.
func hashStep(algo hash.Algorithm, tag uint16, sibling, input hash.Imprint, level byte) (hash.Imprint, error) {
	hsr, err := algo.New()
	if err != nil {
		return nil, err
	}
	if tag == TagLinkRight {
		if _, err := hsr.Write(sibling); err != nil {
			return nil, err
		}
		if _, err := hsr.Write(input); err != nil {
			return nil, err
		}
	} else {
		if _, err := hsr.Write(input); err != nil {
			return nil, err
		}
		if _, err := hsr.Write(sibling); err != nil {
			return nil, err
		}
	}
	if _, err := hsr.Write([]byte{level}); err != nil {
		return nil, err
	}
	return hsr.Imprint()
}

// validateLegacyID checks the structural constraints the legacy format places on a
// SHA-224 sibling imprint, which carries an embedded ASCII label (the "legacy ID")
// instead of a plain digest: byte[1] is reserved and must be zero, and every byte past
// the declared label length must be zero padding.
func validateLegacyID(imprint hash.Imprint) error {
	// imprint = [algo byte][28 bytes of SHA-224-shaped content]: byte[1]=reserved,
	// byte[2]=label length, label bytes, zero padding to the digest length.
	if imprint[1] != 0 {
		return formatError("Legacy ID second byte must be 0")
	}
	strLen := int(imprint[2])
	if strLen > legacyIDStrLenMax {
		return formatError("Legacy ID string length mismatch")
	}
	labelEnd := 3 + strLen
	for i := labelEnd; i < len(imprint); i++ {
		if imprint[i] != 0 {
			return formatError("Bytes after the legacy ID string must be 0")
		}
	}
	return nil
}
