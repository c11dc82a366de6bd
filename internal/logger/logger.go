/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package logger wraps logrus the way the teacher's logger package does:
// a process-wide Logger with leveled methods and per-call structured Fields,
// sized to what a single-shot scan needs instead of the teacher's full
// multi-hook, multi-sink manager.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the leveled, structured logging surface the rest of the scanner
// depends on.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level
	WithFields(f Fields) Logger
	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
}

type logger struct {
	entry *logrus.Entry
	lvl   Level
}

// New creates the process-wide Logger, writing to stderr the way the
// teacher's default logger sink does, with a text formatter.
func New(lvl Level) Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(lvl.Logrus())
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &logger{
		entry: logrus.NewEntry(l),
		lvl:   lvl,
	}
}

func (l *logger) SetLevel(lvl Level) {
	l.lvl = lvl
	l.entry.Logger.SetLevel(lvl.Logrus())
}

func (l *logger) GetLevel() Level {
	return l.lvl
}

func (l *logger) WithFields(f Fields) Logger {
	return &logger{
		entry: l.entry.WithFields(f.logrus()),
		lvl:   l.lvl,
	}
}

func (l *logger) Trace(msg string) { l.entry.Trace(msg) }
func (l *logger) Debug(msg string) { l.entry.Debug(msg) }
func (l *logger) Info(msg string)  { l.entry.Info(msg) }
func (l *logger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *logger) Error(msg string) { l.entry.Error(msg) }
func (l *logger) Fatal(msg string) { l.entry.Fatal(msg) }
