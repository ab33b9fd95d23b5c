package hostfuncs

import (
	"context"
	"log/slog"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/websg-dev/websg-go/wireformat"
)

// FuncLogMessage is the name of the guest logging function.
const FuncLogMessage = "log_message"

// LogBundle returns the log_message function, which re-emits guest slog
// records through logger.
//
//	log_message(packed i64)  JSON wireformat.LogMessageWire at ptr<<32|len
func LogBundle(logger *zap.Logger) Bundle {
	guestLogger := logger.Named("guest")
	return NewBundle(Function{
		Name:      FuncLogMessage,
		Signature: JSONSignature,
		Handler: NewJSONHandler(func(ctx context.Context, msg wireformat.LogMessageWire) error {
			emitGuestLog(ctx, guestLogger, msg)
			return nil
		}),
	})
}

func emitGuestLog(ctx context.Context, logger *zap.Logger, msg wireformat.LogMessageWire) {
	ce := logger.Check(zapLevel(msg.Level), msg.Message)
	if ce == nil {
		return
	}
	if !msg.Timestamp.IsZero() {
		ce.Time = msg.Timestamp
	}

	fields := make([]zap.Field, 0, len(msg.Attrs)+1)
	if hc, ok := ctx.(HostContext); ok && hc.InstanceID() != "" {
		fields = append(fields, zap.String("instance", hc.InstanceID()))
	}
	for _, attr := range msg.Attrs {
		fields = append(fields, zapField(attr))
	}
	ce.Write(fields...)
}

// zapLevel maps a slog level name such as "INFO" or "WARN+2" to zap.
func zapLevel(name string) zapcore.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func zapField(attr wireformat.LogAttrWire) zap.Field {
	switch attr.Type {
	case "int64":
		if v, err := strconv.ParseInt(attr.Value, 10, 64); err == nil {
			return zap.Int64(attr.Key, v)
		}
	case "uint64":
		if v, err := strconv.ParseUint(attr.Value, 10, 64); err == nil {
			return zap.Uint64(attr.Key, v)
		}
	case "float64":
		if v, err := strconv.ParseFloat(attr.Value, 64); err == nil {
			return zap.Float64(attr.Key, v)
		}
	case "bool":
		if v, err := strconv.ParseBool(attr.Value); err == nil {
			return zap.Bool(attr.Key, v)
		}
	}
	return zap.String(attr.Key, attr.Value)
}
