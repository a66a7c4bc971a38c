// Package toml loads crawl rule sets from TOML files.
package toml

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/fwojciec/sitepulse"
	"github.com/pelletier/go-toml/v2"
)

// DefaultRulesFile is the rule file read when none is configured.
const DefaultRulesFile = "config.toml"

// Ensure RuleFile implements sitepulse.RuleSource at compile time.
var _ sitepulse.RuleSource = (*RuleFile)(nil)

// ruleDocument is the on-disk shape of a rule file:
//
//	patterns     = ["/blog/:slug"]
//	ignore_paths = ["/admin"]
//
// "ignore" is accepted as an alias of "ignore_paths".
type ruleDocument struct {
	Patterns    []string `toml:"patterns"`
	IgnorePaths []string `toml:"ignore_paths"`
	Ignore      []string `toml:"ignore"`
}

// RuleFile reads a rule set from a TOML file on every load, so edits apply
// to the next subscription without a restart.
type RuleFile struct {
	path   string
	logger *slog.Logger
}

// NewRuleFile creates a RuleFile reading path. logger may be nil.
func NewRuleFile(path string, logger *slog.Logger) *RuleFile {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RuleFile{path: path, logger: logger}
}

// LoadRules reads the rule file. A missing or unparsable file yields an
// empty rule set and a warning, never an error.
func (f *RuleFile) LoadRules(ctx context.Context) (*sitepulse.RuleSet, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("rule file not found, using empty rule set", "path", f.path)
		} else {
			f.logger.Warn("unable to read rule file, using empty rule set", "path", f.path, "error", err)
		}
		return &sitepulse.RuleSet{}, nil
	}

	rules, err := ParseRules(data)
	if err != nil {
		f.logger.Warn("unable to parse rule file, using empty rule set", "path", f.path, "error", err)
		return &sitepulse.RuleSet{}, nil
	}
	return rules, nil
}

// ParseRules decodes a TOML rule document.
func ParseRules(data []byte) (*sitepulse.RuleSet, error) {
	var doc ruleDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, sitepulse.WrapError(sitepulse.EINVALID, err, "invalid rule file")
	}

	rules := &sitepulse.RuleSet{
		Patterns:    doc.Patterns,
		IgnorePaths: append(doc.IgnorePaths, doc.Ignore...),
	}
	return rules, nil
}
