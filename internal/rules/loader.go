// internal/rules/loader.go
package rules

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/pharmalytics/inventory-engine/internal/engine/interaction"
	"github.com/pharmalytics/inventory-engine/pkg/logger"
	"github.com/spf13/viper"
)

// ruleFile is the on-disk YAML shape of the interaction knowledge base.
type ruleFile struct {
	Rules []domain.InteractionRule `mapstructure:"rules"`
}

// Loader serves the current interaction rule base and re-reads the YAML file
// whenever its mtime changes. A failed reload keeps the previous rule base
// in service.
type Loader struct {
	path string

	mu      sync.RWMutex
	base    *interaction.RuleBase
	modTime time.Time
}

// NewLoader reads the rule file once up front. An unreadable file at startup
// is a hard error; later reload failures are logged and tolerated.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	base, modTime, err := l.read()
	if err != nil {
		return nil, err
	}
	l.base = base
	l.modTime = modTime
	logger.Log.Info().
		Str("path", path).
		Int("rules", base.Size()).
		Msg("interaction rule base loaded")
	return l, nil
}

// Current returns the rule base, reloading first if the file changed on disk.
func (l *Loader) Current() *interaction.RuleBase {
	l.maybeReload()
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.base
}

// Reload forces a re-read regardless of mtime.
func (l *Loader) Reload() error {
	base, modTime, err := l.read()
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.base = base
	l.modTime = modTime
	l.mu.Unlock()
	logger.Log.Info().
		Str("path", l.path).
		Int("rules", base.Size()).
		Msg("interaction rule base reloaded")
	return nil
}

func (l *Loader) maybeReload() {
	info, err := os.Stat(l.path)
	if err != nil {
		logger.Log.Warn().Err(err).Str("path", l.path).Msg("rule file stat failed, keeping current rules")
		return
	}

	l.mu.RLock()
	unchanged := info.ModTime().Equal(l.modTime)
	l.mu.RUnlock()
	if unchanged {
		return
	}

	if err := l.Reload(); err != nil {
		logger.Log.Warn().Err(err).Str("path", l.path).Msg("rule reload failed, keeping current rules")
	}
}

func (l *Loader) read() (*interaction.RuleBase, time.Time, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("stat rule file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(l.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, time.Time{}, fmt.Errorf("read rule file: %w", err)
	}

	var file ruleFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, time.Time{}, fmt.Errorf("parse rule file: %w", err)
	}

	return interaction.NewRuleBase(file.Rules), info.ModTime(), nil
}
