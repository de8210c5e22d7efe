package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

var (
	infoLogger  = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)
	errorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
	debugLogger = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime)
)

// Init resets the loggers to their default sinks.
func Init() {
	infoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)
	errorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
	debugLogger = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime)
}

// formatKV renders trailing key/value pairs as key=value tokens.
func formatKV(msg string, kv []interface{}) string {
	if len(kv) == 0 {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprintf("%v", kv[i])
		if i+1 < len(kv) {
			b.WriteString(fmt.Sprintf(" %s=%v", key, kv[i+1]))
		} else {
			b.WriteString(fmt.Sprintf(" %s=", key))
		}
	}
	return b.String()
}

func Info(msg string, kv ...interface{}) {
	infoLogger.Println(formatKV(msg, kv))
}

func Infof(format string, v ...interface{}) {
	infoLogger.Printf(format, v...)
}

func Error(msg string, kv ...interface{}) {
	errorLogger.Println(formatKV(msg, kv))
}

func Errorf(format string, v ...interface{}) {
	errorLogger.Printf(format, v...)
}

func Debug(msg string, kv ...interface{}) {
	debugLogger.Println(formatKV(msg, kv))
}

func Debugf(format string, v ...interface{}) {
	debugLogger.Printf(format, v...)
}

func Fatal(msg string) {
	errorLogger.Fatal(msg)
}

func Fatalf(format string, v ...interface{}) {
	errorLogger.Fatalf(format, v...)
}
