package bootstrap

import (
	"github.com/kbukum/authgate/config"
)

// Config is the constraint for application configuration types. Structs that
// embed config.ServiceConfig get GetServiceConfig through promotion and only
// need to add ApplyDefaults and Validate for their own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
