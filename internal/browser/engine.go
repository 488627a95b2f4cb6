package browser

import (
	"strings"

	"github.com/testforge/hrm-e2e/internal/domain"
)

// Engine is one of the three supported browser engines
type Engine string

const (
	EngineChromium Engine = "chromium"
	EngineFirefox  Engine = "firefox"
	EngineWebKit   Engine = "webkit"
)

// Engines lists every supported engine
func Engines() []Engine {
	return []Engine{EngineChromium, EngineFirefox, EngineWebKit}
}

// ParseEngine maps a case-insensitive name onto an Engine
func ParseEngine(name string) (Engine, error) {
	e := Engine(strings.ToLower(strings.TrimSpace(name)))
	if err := e.Validate(); err != nil {
		return "", err
	}
	return e, nil
}

// Validate rejects anything outside the closed engine set
func (e Engine) Validate() error {
	switch e {
	case EngineChromium, EngineFirefox, EngineWebKit:
		return nil
	default:
		return domain.ErrUnsupportedEngine(string(e))
	}
}

func (e Engine) String() string {
	return string(e)
}
