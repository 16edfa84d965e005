package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Field helpers for common trace attributes

func Component(name string) Field {
	return String("component", name)
}

func PipeID(id string) Field {
	return String("pipe_id", id)
}

func NodeID(id string) Field {
	return String("node_id", id)
}

func TraceID(id string) Field {
	return String("trace_id", id)
}

func Direction(d string) Field {
	return String("direction", d)
}

func Layer(name string) Field {
	return String("layer", name)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
