// Package redshift provides the Amazon Redshift connector for dbconnect.
//
// This file registers the connector with the connector registry. Import the
// package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/dbconnect/pkg/connectors/redshift"
package redshift

import (
	"log/slog"

	"github.com/leapstack-labs/dbconnect/pkg/connector"
)

func init() {
	// Declaration-time check so level handling never varies per call.
	if err := dialect.Validate(); err != nil {
		panic(err)
	}
	connector.Register("redshift", func(cfg connector.Config, logger *slog.Logger) (connector.Connector, error) {
		return New(cfg, logger)
	})
}
