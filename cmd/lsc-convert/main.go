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

// Command lsc-convert reads a legacy (RFC 3161) time-stamp token and writes out the
// equivalent KSI signature TLV.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/guardtime/lsc/cms"
	"github.com/guardtime/lsc/convert"
	"github.com/guardtime/lsc/errors"
	"github.com/guardtime/lsc/log"
	"github.com/guardtime/lsc/signature"
)

func main() {
	exit := 0
	defer func() { os.Exit(exit) }()

	var (
		inPath  = flag.String("in", "", "legacy time-stamp token to convert")
		outPath = flag.String("out", "", "output path for the converted KSI signature")
	)
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		fmt.Println("Usage: lsc-convert -in <legacy-token> -out <ksi-signature>")
		exit = 1
		return
	}

	logger, err := log.New(log.INFO, os.Stderr)
	if err != nil {
		fmt.Println("Failed to initialize logger: ", err)
		exit = 1
		return
	}
	log.SetLogger(logger)

	inFile, err := os.Open(*inPath)
	if err != nil {
		fmt.Println("Failed to open input file: ", err)
		exit = 1
		return
	}
	defer inFile.Close()

	legacySig, err := cms.Parse(inFile)
	if err != nil {
		fmt.Println("Failed to parse legacy time-stamp token: ", err)
		exit = int(errors.KsiErr(err).Code())
		return
	}

	result, err := convert.Convert(legacySig)
	if err != nil {
		fmt.Println("Failed to convert signature: ", err)
		exit = int(errors.KsiErr(err).Code())
		return
	}

	// Round-trip the assembled TLV back through the signature package: this both confirms
	// the converted bytes parse as a well-formed KSI signature and runs the same internal
	// consistency checks a live client would run on it before ever extending it.
	sig, err := signature.New(signature.BuildFromStream(bytes.NewReader(result.Signature.Raw)))
	if err != nil {
		fmt.Println("Converted signature failed internal verification: ", err)
		exit = int(errors.KsiErr(err).Code())
		return
	}
	if t, err := sig.SigningTime(); err == nil {
		log.Info("Converted signature passed internal verification, signing time: ", t)
	}

	outFile, err := os.Create(*outPath)
	if err != nil {
		fmt.Println("Failed to create output file: ", err)
		exit = 1
		return
	}
	defer outFile.Close()

	if _, err := outFile.Write(result.Signature.Raw); err != nil {
		fmt.Println("Failed to write converted signature: ", err)
		exit = 1
		return
	}
}
