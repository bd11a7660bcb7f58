// Package autoload initializes the global logger from LOG_* variables when
// blank-imported. It reads the process environment only; flags are not parsed
// this early.
package autoload

import (
	"github.com/kelseyhightower/envconfig"
	logx "github.com/tanpawarit/flightdesk/pkg/logger"
)

func init() {
	var conf logx.Config
	if err := envconfig.Process("LOG", &conf); err != nil {
		logx.Init()
		return
	}
	logx.Init(conf)
}
