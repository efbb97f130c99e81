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
	"fmt"

	"github.com/guardtime/lsc/errors"
)

func formatError(msg string) error {
	return errors.New(errors.KsiInvalidFormatError).AppendMessage(msg)
}

func formatErrorf(format string, a ...interface{}) error {
	return formatError(fmt.Sprintf(format, a...))
}

// wrapFormat converts a lower-level parse failure (from encoding/asn1 or from this
// package's own sequential walk) into the structure-specific format error the legacy
// implementation produces for the same failure, e.g. "TST info has invalid format".
func wrapFormat(structure string, err error) error {
	if err == nil {
		return nil
	}
	return errors.New(errors.KsiInvalidFormatError).
		AppendMessage(fmt.Sprintf("%s has invalid format", structure)).
		SetExtError(err)
}

func argError(msg string) error {
	return errors.New(errors.KsiInvalidArgumentError).AppendMessage(msg)
}
