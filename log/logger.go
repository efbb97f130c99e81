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

package log

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/guardtime/lsc/errors"
)

// Priority is a logging priority threshold for WriterLogger.
type Priority int

// Logging priorities, lowest to highest. A WriterLogger configured with a given Priority
// writes messages at that level and every level above it.
const (
	DEBUG Priority = iota
	INFO
	NOTICE
	WARNING
	ERROR
	// NONE is not a usable logging priority: it exists only to be rejected by New.
	NONE
)

var prefixes = map[Priority]string{
	DEBUG:   "[D]",
	INFO:    "[I]",
	NOTICE:  "[N]",
	WARNING: "[W]",
	ERROR:   "[E]",
}

// WriterLogger is the basic Logger implementation: it writes one prefixed, timestamped line
// per message to an io.Writer, filtering out everything below its configured Priority. A nil
// *WriterLogger is valid and logs nothing, so a Logger field left unset behaves like
// SetLogger(nil).
type WriterLogger struct {
	level Priority
	w     io.Writer
}

// New creates a WriterLogger that writes messages at level and above to w. w may be nil, in
// which case every message is discarded. NONE is rejected as it does not name a real
// priority to log at.
func New(level Priority, w io.Writer) (*WriterLogger, error) {
	if level == NONE {
		return nil, errors.New(errors.KsiInvalidArgumentError).AppendMessage("Invalid log level.")
	}
	return &WriterLogger{level: level, w: w}, nil
}

func (l *WriterLogger) log(level Priority, v []interface{}) {
	if l == nil || l.w == nil || level < l.level {
		return
	}
	line := fmt.Sprintln(append([]interface{}{time.Now().Format(time.RFC3339), prefixes[level]}, v...)...)
	log.New(l.w, "", 0).Print(line)
}

// Debug implements Logger.
func (l *WriterLogger) Debug(v ...interface{}) { l.log(DEBUG, v) }

// Info implements Logger.
func (l *WriterLogger) Info(v ...interface{}) { l.log(INFO, v) }

// Notice implements Logger.
func (l *WriterLogger) Notice(v ...interface{}) { l.log(NOTICE, v) }

// Warning implements Logger.
func (l *WriterLogger) Warning(v ...interface{}) { l.log(WARNING, v) }

// Error implements Logger.
func (l *WriterLogger) Error(v ...interface{}) { l.log(ERROR, v) }
