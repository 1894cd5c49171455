package utils

import (
	"fmt"
	"log"
	"time"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

func logLine(levelColor, level, component, message string, args ...interface{}) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	log.Printf("%s[%s]%s %s[%s]%s %s",
		levelColor, level, ColorReset,
		ColorCyan, component, ColorReset,
		message)
}

func LogInfo(component, message string, args ...interface{}) {
	logLine(ColorBlue, "INFO", component, message, args...)
}

func LogSuccess(component, message string, args ...interface{}) {
	logLine(ColorGreen, "SUCCESS", component, message, args...)
}

func LogWarning(component, message string, args ...interface{}) {
	logLine(ColorYellow, "WARNING", component, message, args...)
}

func LogDebug(component, message string, args ...interface{}) {
	logLine(ColorPurple, "DEBUG", component, message, args...)
}

func LogError(component, message string, err error) {
	if err != nil {
		logLine(ColorRed, "ERROR", component, "%s: %s%v%s", message, ColorRed, err, ColorReset)
		return
	}
	logLine(ColorRed, "ERROR", component, message)
}

func LogRequest(method, path, userID string) {
	log.Printf("%s[REQUEST]%s %s%s%s %s | UserID: %s%s%s",
		ColorCyan, ColorReset,
		ColorWhite, method, ColorReset,
		path,
		ColorYellow, userID, ColorReset)
}

func LogResponse(path string, statusCode int, duration time.Duration) {
	color := ColorGreen
	if statusCode >= 400 && statusCode < 500 {
		color = ColorYellow
	} else if statusCode >= 500 {
		color = ColorRed
	}

	log.Printf("%s[RESPONSE]%s %s | Status: %s%d%s | Duration: %s%v%s",
		ColorGray, ColorReset,
		path,
		color, statusCode, ColorReset,
		ColorWhite, duration, ColorReset)
}

func LogDB(operation, detail string) {
	log.Printf("%s[DB]%s %s[%s]%s %s",
		ColorGray, ColorReset,
		ColorWhite, operation, ColorReset,
		detail)
}
