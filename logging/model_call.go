package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ModelCall describes one evaluation of a spectral model.
type ModelCall struct {
	CallID     string
	Model      string
	Convention string
	Bins       int
	Spectrum   int
	Duration   time.Duration
}

// MarshalLogObject writes the call as a nested object. Duration is in
// microseconds since most model calls finish well under a millisecond.
func (c ModelCall) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("call_id", c.CallID)
	enc.AddString("model", c.Model)
	enc.AddString("convention", c.Convention)
	enc.AddInt("bins", c.Bins)
	enc.AddInt("spectrum", c.Spectrum)
	enc.AddInt64("duration_us", c.Duration.Microseconds())
	return nil
}

// ModelCallFields returns flat fields for a model call, for loggers that
// filter on "model" or "call_id".
//
// Example:
//
//	logger.Debug("model evaluated", logging.ModelCallFields(call)...)
func ModelCallFields(c ModelCall) []zap.Field {
	return []zap.Field{
		zap.String("call_id", c.CallID),
		zap.String("model", c.Model),
		zap.String("convention", c.Convention),
		zap.Int("bins", c.Bins),
		zap.Int("spectrum", c.Spectrum),
		zap.Duration("duration", c.Duration),
	}
}

// ModelCallObject nests the call under the "call" key.
func ModelCallObject(c ModelCall) zap.Field {
	return zap.Object("call", c)
}

// RequestFields returns the fields logged for each HTTP request.
func RequestFields(method, path string, status int, latency time.Duration, requestID string) []zap.Field {
	return []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("request_id", requestID),
	}
}
