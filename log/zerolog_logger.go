// SPDX-License-Identifier: quiltery License 1.0
//go:build zerolog

package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/quiltery/lingo/config"
)

const (
	stackFramesToSkip = 2
)

// .
var (
	//nolint:gochecknoglobals // One logger for the whole app.
	logger *zerolog.Logger
)

//nolint:gochecknoinits // The logger is global, so it has to be initialized in an init.
func init() {
	var appCfg cfg
	config.MustLoadFromKey("logger", &appCfg)

	isJSON := strings.EqualFold(appCfg.Encoder, "json")
	setupZerolog(isJSON, appCfg.Level)
	setupStdlibBridge(isJSON, appCfg.Level)
}

func setupZerolog(isJSON bool, level string) {
	zerolog.DisableSampling(true)
	zerolog.ErrorStackMarshaler = marshalErrorStack //nolint:reassign // It is called by an init.
	zerolog.InterfaceMarshalFunc = json.Marshal
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Nanosecond
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	var err error
	logger, err = buildLogger(isJSON, level)
	if err != nil {
		panic(errors.Wrap(err, "failed to build the logger"))
	}
}

func setupStdlibBridge(isJSON bool, level string) {
	bridge, err := buildLogger(isJSON, level)
	if err != nil {
		panic(errors.Wrap(err, "failed to build the stdlib bridge logger"))
	}
	log.SetFlags(0)
	log.SetOutput(bridge)
}

func buildLogger(isJSON bool, level string) (*zerolog.Logger, error) {
	var out io.Writer = os.Stderr
	if !isJSON {
		out = &zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339Nano,
			PartsOrder: []string{
				zerolog.LevelFieldName,
				zerolog.TimestampFieldName,
				zerolog.MessageFieldName,
			},
			PartsExclude: []string{
				zerolog.ErrorFieldName,
				zerolog.ErrorStackFieldName,
				zerolog.CallerFieldName,
			},
		}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid logger level")
	}
	lgr := zerolog.New(out).With().Timestamp().Stack().Logger().Level(lvl)

	return &lgr, nil
}

func marshalErrorStack(err error) any {
	m := pkgerrors.MarshalStack(err)
	if m == nil {
		return nil
	}
	frames, ok := m.([]map[string]string)
	if !ok || len(frames) <= stackFramesToSkip {
		return nil
	}
	stacks := make([]string, 0, len(frames)-stackFramesToSkip)
	for _, frame := range frames[:len(frames)-stackFramesToSkip] {
		stacks = append(stacks, fmt.Sprintf("%s:%s:%s",
			frame[pkgerrors.StackSourceFileName],
			frame[pkgerrors.StackSourceLineName],
			frame[pkgerrors.StackSourceFunctionName]))
	}

	return strings.Join(stacks, "<<")
}

func Error(err error, fields ...any) {
	if err == nil {
		return
	}
	event := logger.Err(err)
	if len(fields) > 0 {
		event = event.Fields(fields)
	}

	event.Send()
}

func Debug(msg string, fields ...any) {
	event := logger.Debug()
	if len(fields) > 0 {
		event = event.Fields(fields)
	}

	event.Msg(msg)
}

func Info(msg string, fields ...any) {
	event := logger.Info()
	if len(fields) > 0 {
		event = event.Fields(fields)
	}

	event.Msg(msg)
}

func Warn(msg string, fields ...any) {
	event := logger.Warn()
	if len(fields) > 0 {
		event = event.Fields(fields)
	}

	event.Msg(msg)
}

func Fatal(anything any, fields ...any) {
	if anything == nil {
		return
	}
	event := logger.Fatal()
	if len(fields) > 0 {
		event = event.Fields(fields)
	}

	switch obj := anything.(type) {
	case error:
		event.Err(obj).Send()
	case string:
		event.Msg(obj)
	default:
		event.Send()
	}
}

func Panic(anything any, fields ...any) {
	if anything == nil {
		return
	}
	event := logger.Panic()
	if len(fields) > 0 {
		event = event.Fields(fields)
	}

	switch obj := anything.(type) {
	case error:
		event.Err(obj).Send()
	case string:
		event.Err(errors.New(obj)).Send()
	default:
		event.Err(errors.Errorf("%#v", obj)).Send()
	}
}

func Level() string {
	return logger.GetLevel().String()
}
