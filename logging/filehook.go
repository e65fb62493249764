package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// FileHook appends every log entry as a JSON line to a file, next to
// whatever formatter the logger itself uses.
type FileHook struct {
	file      *os.File
	formatter *logrus.JSONFormatter
}

func NewFileHook(path string) (*FileHook, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}

	return &FileHook{file: file, formatter: &logrus.JSONFormatter{}}, nil
}

func (hook *FileHook) Fire(entry *logrus.Entry) error {
	line, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}

	_, err = hook.file.Write(line)
	return err
}

func (hook *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
