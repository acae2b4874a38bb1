package logger

import (
	"encoding/json"
	"io"
	"log"
	"os"
)

var exit = os.Exit

func Init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
	Info("logger initialized", nil)
}

// SetOutput redirects log lines, mostly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
	log.SetFlags(0)
}

func Info(msg string, fields map[string]any) {
	write("INFO", msg, fields)
}

func Warn(msg string, fields map[string]any) {
	write("WARN", msg, fields)
}

func Error(msg string, fields map[string]any) {
	write("ERROR", msg, fields)
}

func Fatal(msg string, fields map[string]any) {
	write("FATAL", msg, fields)
	exit(1)
}

type line struct {
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

func write(level, msg string, fields map[string]any) {
	b, err := json.Marshal(line{Level: level, Msg: msg, Fields: fields})
	if err != nil {
		// fields that cannot be encoded still get the message out
		log.Printf(`{"level":%q,"msg":%q,"fields_error":%q}`, level, msg, err.Error())
		return
	}
	log.Print(string(b))
}
