// logger/logpath.go
package logger

import (
	"os"
	"path/filepath"
	"time"
)

// EnsureLogFilePath resolves the file a logger exports to. A directory (existing or not)
// gets a timestamped log_YYYYMMDD_HHMMSS.log file inside it, an empty path uses the
// current directory, and any other path is used as the file name. Parent directories
// are created as needed.
func EnsureLogFilePath(logPath string) (string, error) {
	fileName := "log_" + time.Now().Format("20060102_150405") + ".log"

	switch info, err := os.Stat(logPath); {
	case logPath == "":
		logPath = filepath.Join(".", fileName)
	case os.IsNotExist(err) && filepath.Ext(logPath) == "":
		logPath = filepath.Join(logPath, fileName)
	case err == nil && info.IsDir():
		logPath = filepath.Join(logPath, fileName)
	case err != nil && !os.IsNotExist(err):
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return "", err
	}
	return logPath, nil
}
