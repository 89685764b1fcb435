package schedule

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/t3ls/fdtbridge/errs"
)

type scheduleDocument struct {
	Buffer    string     `yaml:"buffer"`
	Refreshes []RuleSpec `yaml:"refreshes"`
}

// Parse reads a YAML schedule document. The buffer field is optional and
// defaults to DefaultBuffer; "0" disables it.
func Parse(data []byte) (*Schedule, error) {
	const op = "schedule.parse"
	var doc scheduleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.New(op, errs.CodeConfig,
			errs.WithMessage("decode schedule document"),
			errs.WithCause(err))
	}

	buffer := DefaultBuffer
	if raw := strings.TrimSpace(doc.Buffer); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errs.New(op, errs.CodeConfig,
				errs.WithMessage(fmt.Sprintf("invalid buffer %q", raw)),
				errs.WithCause(err))
		}
		buffer = parsed
	}

	return New(doc.Refreshes, buffer)
}

// LoadFile reads a YAML schedule document from disk.
func LoadFile(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New("schedule.load", errs.CodeConfig,
			errs.WithMessage("read schedule file"),
			errs.WithCause(err))
	}
	return Parse(data)
}
