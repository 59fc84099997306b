package logger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSV writes the five-column layout named in spec §6:
// time, model_id, model_name, port_name, data. Grounded on
// include/cadmium/simulation/logger/csv.hpp's CSVLogger, including its
// quirk of writing an empty port_name column for state rows so every row
// has the same column count.
type CSV struct {
	w       *csv.Writer
	started bool
}

// NewCSV wraps w (typically an *os.File) as a CSV logger. The header row is
// written on Start.
func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

func (l *CSV) Start() {
	l.started = true
	_ = l.w.Write([]string{"time", "model_id", "model_name", "port_name", "data"})
	l.w.Flush()
}

func (l *CSV) Stop() {
	l.w.Flush()
}

func (l *CSV) LogTime(float64) {}

func (l *CSV) LogOutput(t float64, modelID int, modelName, portName, rendered string) {
	_ = l.w.Write([]string{formatTime(t), strconv.Itoa(modelID), modelName, portName, rendered})
	l.w.Flush()
}

func (l *CSV) LogState(t float64, modelID int, modelName, rendered string) {
	_ = l.w.Write([]string{formatTime(t), strconv.Itoa(modelID), modelName, "", rendered})
	l.w.Flush()
}

func formatTime(t float64) string {
	return fmt.Sprintf("%g", t)
}

var _ Logger = (*CSV)(nil)
