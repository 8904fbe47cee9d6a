package providers

import (
	"fmt"
	"pulsed/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}

	seenKeys := make(map[string]struct{}, len(cv.conf.Agents))
	for _, agent := range cv.conf.Agents {
		if _, dup := seenKeys[agent.APIKey]; dup {
			return fmt.Errorf("invalid config: duplicate apiKey for agent %d", agent.ID)
		}
		seenKeys[agent.APIKey] = struct{}{}
	}

	return nil
}
