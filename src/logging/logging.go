package logging

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"webbuild/src/config"
	"webbuild/src/ee"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// See https://github.com/fatih/color/blob/main/color.go for more codes.

var Reset = "\033[0m"
var Bold = "\033[1m"

var Red = "\033[31m"
var Blue = "\033[34m"
var Gray = "\033[37m"

var BgBlack = "\033[40m"
var BgRed = "\033[41m"
var BgYellow = "\033[43m"
var BgBlue = "\033[44m"

func init() {
	if runtime.GOOS == "windows" {
		Reset = BgBlack + Reset
	}
}

func init() {
	zerolog.ErrorStackMarshaler = ee.ZerologStackMarshaler
	log.Logger = log.Output(NewPrettyZerologWriter(os.Stderr)).With().Stack().Logger()
	zerolog.SetGlobalLevel(config.Config.LogLevel)
}

func GlobalLogger() *zerolog.Logger {
	return &log.Logger
}

func Debug() *zerolog.Event {
	return log.Debug().Timestamp().Stack()
}

func Info() *zerolog.Event {
	return log.Info().Timestamp().Stack()
}

func Warn() *zerolog.Event {
	return log.Warn().Timestamp().Stack()
}

func Error() *zerolog.Event {
	return log.Error().Timestamp().Stack()
}

func Fatal() *zerolog.Event {
	return log.Fatal().Timestamp().Stack()
}

func With() zerolog.Context {
	return log.With().Stack()
}

// PrettyZerologWriter turns zerolog's JSON lines into something readable in a
// terminal. Entries with fields, errors or stacks are fenced off with a rule.
type PrettyZerologWriter struct {
	out                 io.Writer
	wd                  string
	wasLastLogMultiline bool
}

type prettyLogEntry struct {
	Timestamp  string
	Level      string
	Message    string
	Error      string
	StackTrace []any

	OtherFields []prettyField
}

type prettyField struct {
	Name  string
	Value any
}

var ColorFromLevel = map[string]string{
	"trace": Gray,
	"debug": Gray,
	"info":  BgBlue,
	"warn":  BgYellow,
	"error": BgRed,
	"fatal": BgRed,
	"panic": BgRed,
}

func NewPrettyZerologWriter(out io.Writer) *PrettyZerologWriter {
	wd, _ := os.Getwd()
	return &PrettyZerologWriter{
		out: out,
		wd:  wd,
	}
}

func (w *PrettyZerologWriter) Write(p []byte) (int, error) {
	var fields map[string]any
	if err := json.Unmarshal(p, &fields); err != nil {
		return w.out.Write(p)
	}

	entry := parseEntry(fields)
	isMultiline := entry.Error != "" || entry.StackTrace != nil || entry.OtherFields != nil

	var b strings.Builder
	if isMultiline || w.wasLastLogMultiline {
		b.WriteString("---------------------------------------\n")
	}
	b.WriteString(entry.Timestamp)
	b.WriteString(" ")
	if entry.Level != "" {
		b.WriteString(ColorFromLevel[entry.Level])
		b.WriteString(Bold)
		b.WriteString(strings.ToUpper(entry.Level))
		b.WriteString(Reset)
		b.WriteString(": ")
	}
	b.WriteString(entry.Message)
	b.WriteString("\n")
	if entry.Error != "" {
		b.WriteString("  " + Bold + Red + "ERROR:" + Reset + " ")
		b.WriteString(entry.Error)
		b.WriteString("\n")
	}
	if len(entry.OtherFields) > 0 {
		b.WriteString("  " + Bold + Blue + "Fields:" + Reset + "\n")
		for _, field := range entry.OtherFields {
			valuePretty, _ := json.MarshalIndent(field.Value, "    ", "  ")
			b.WriteString("    ")
			b.WriteString(field.Name)
			b.WriteString(": ")
			b.Write(valuePretty)
			b.WriteString("\n")
		}
	}
	if entry.StackTrace != nil {
		b.WriteString("  " + Bold + Blue + "Stack trace:" + Reset + "\n")
		for _, frame := range entry.StackTrace {
			w.writeFrame(&b, frame)
		}
	}

	w.wasLastLogMultiline = isMultiline

	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *PrettyZerologWriter) writeFrame(b *strings.Builder, frame any) {
	frameMap, ok := frame.(map[string]any)
	if !ok {
		return
	}
	file, _ := frameMap["file"].(string)
	function, _ := frameMap["function"].(string)
	line, _ := frameMap["line"].(float64)
	if w.wd != "" {
		file = strings.Replace(file, w.wd, ".", 1)
	}

	b.WriteString("    ")
	b.WriteString(function)
	b.WriteString(" (")
	b.WriteString(file)
	b.WriteString(":")
	b.WriteString(strconv.Itoa(int(line)))
	b.WriteString(")\n")
}

func parseEntry(fields map[string]any) prettyLogEntry {
	var entry prettyLogEntry
	for name, val := range fields {
		switch name {
		case zerolog.TimestampFieldName:
			s, _ := val.(string)
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				entry.Timestamp = t.Format(time.DateTime)
			} else {
				entry.Timestamp = s
			}
		case zerolog.LevelFieldName:
			entry.Level, _ = val.(string)
		case zerolog.MessageFieldName:
			entry.Message, _ = val.(string)
		case zerolog.ErrorFieldName:
			entry.Error, _ = val.(string)
		case zerolog.ErrorStackFieldName:
			entry.StackTrace, _ = val.([]any)
		default:
			entry.OtherFields = append(entry.OtherFields, prettyField{
				Name:  name,
				Value: val,
			})
		}
	}

	sort.Slice(entry.OtherFields, func(i, j int) bool {
		return entry.OtherFields[i].Name < entry.OtherFields[j].Name
	})
	return entry
}

func LogPanics(logger *zerolog.Logger) {
	if r := recover(); r != nil {
		LogPanicValue(logger, r, "recovered from panic")
	}
}

func LogPanicValue(logger *zerolog.Logger, val any, msg string) {
	if logger == nil {
		logger = GlobalLogger()
	}

	if err, ok := val.(error); ok {
		logger.Error().Err(err).Msg(msg)
	} else {
		logger.Error().
			Interface("recovered", val).
			Interface(zerolog.ErrorStackFieldName, ee.Trace()).
			Msg(msg)
	}
}

type loggerContextKey struct{}

func AttachLoggerToContext(logger *zerolog.Logger, ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

func ExtractLogger(ctx context.Context) *zerolog.Logger {
	logger, ok := ctx.Value(loggerContextKey{}).(*zerolog.Logger)
	if !ok || logger == nil {
		return GlobalLogger()
	}
	return logger
}
