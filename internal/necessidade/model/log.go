package model

import "fmt"

// LogLevel of an import log entry.
type LogLevel string

const (
	LogSuccess LogLevel = "success"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// LogEntry is one line of the import log shown to the user. Row is the
// spreadsheet line number, 0 for run-level messages.
type LogEntry struct {
	Level   LogLevel `json:"level"`
	Row     int      `json:"row"`
	Message string   `json:"message"`
}

// Summary counts an import run.
//
//	Read  = Skipped + Valid
//	Valid = Successes + Failures
//
// Conflicts counts persisted rows carrying at least one conflict annotation,
// so it is a subset of Successes.
type Summary struct {
	Read           int  `json:"lidas"`
	Skipped        int  `json:"ignoradas"`
	SkippedEmpty   int  `json:"ignoradas_vazias"`
	SkippedInvalid int  `json:"ignoradas_invalidas"`
	Valid          int  `json:"validas"`
	Successes      int  `json:"sucessos"`
	Failures       int  `json:"falhas"`
	Conflicts      int  `json:"conflitos"`
	Cancelled      bool `json:"cancelada"`
}

// Check verifies the summary arithmetic.
func (s Summary) Check() error {
	switch {
	case s.Skipped != s.SkippedEmpty+s.SkippedInvalid:
		return fmt.Errorf("skipped %d != empty %d + invalid %d", s.Skipped, s.SkippedEmpty, s.SkippedInvalid)
	case s.Read != s.Skipped+s.Valid:
		return fmt.Errorf("read %d != skipped %d + valid %d", s.Read, s.Skipped, s.Valid)
	case s.Valid != s.Successes+s.Failures:
		return fmt.Errorf("valid %d != successes %d + failures %d", s.Valid, s.Successes, s.Failures)
	case s.Conflicts > s.Successes:
		return fmt.Errorf("conflicts %d exceed successes %d", s.Conflicts, s.Successes)
	}
	return nil
}

func (s Summary) String() string {
	return fmt.Sprintf("%d lidas, %d ignoradas, %d sucesso(s), %d falha(s), %d com conflito",
		s.Read, s.Skipped, s.Successes, s.Failures, s.Conflicts)
}
