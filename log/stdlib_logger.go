// SPDX-License-Identifier: quiltery License 1.0
//go:build !zerolog

package log

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/quiltery/lingo/config"
)

const (
	debug = "debug"
	info  = "info"
)

// .
var (
	//nolint:gochecknoglobals // Immutable singleton.
	appCfg cfg
)

//nolint:gochecknoinits // The logger is global, so it has to be initialized in an init.
func init() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix | log.LUTC | log.Llongfile | log.Lmicroseconds)
	config.MustLoadFromKey("logger", &appCfg)
}

func printLeveled(level, msg string, fields ...any) {
	verbs := make([]string, 0, len(fields)+1)
	for i := 0; i <= len(fields); i++ {
		verbs = append(verbs, "%v")
	}
	vals := make([]any, 0, len(fields)+1)
	vals = append(vals, msg)
	vals = append(vals, fields...)

	log.Printf(fmt.Sprintf("%v:%v", level, strings.Join(verbs, " ")), vals...)
}

func Error(err error, fields ...any) {
	if err == nil {
		return
	}
	printLeveled("ERROR", err.Error(), fields...)
}

func Debug(msg string, fields ...any) {
	if !strings.EqualFold(appCfg.Level, debug) {
		return
	}
	printLeveled("DEBUG", msg, fields...)
}

func Info(msg string, fields ...any) {
	printLeveled("INFO", msg, fields...)
}

func Warn(msg string, fields ...any) {
	if lvl := strings.ToLower(appCfg.Level); lvl == debug || lvl == info {
		return
	}
	printLeveled("WARN", msg, fields...)
}

func Fatal(anything any, fields ...any) {
	if anything == nil {
		return
	}
	defer os.Exit(1)
	switch obj := anything.(type) {
	case error:
		Error(obj, fields...)
	case string:
		Error(errors.New(obj), fields...)
	default:
		Error(errors.Errorf("%#v", obj), fields...)
	}
}

func Panic(anything any, fields ...any) {
	if anything == nil {
		return
	}
	defer func() {
		panic(anything)
	}()
	switch obj := anything.(type) {
	case error:
		Error(obj, fields...)
	case string:
		Error(errors.New(obj), fields...)
	default:
		Error(errors.Errorf("%#v", obj), fields...)
	}
}

func Level() string {
	return appCfg.Level
}
