package root

import (
	"github.com/proptrack/proptrack/apps/cli/cmd/auth"
	"github.com/proptrack/proptrack/apps/cli/cmd/bootstrap"
	"github.com/proptrack/proptrack/apps/cli/cmd/users"
)

func init() {
	Root().AddCommand(auth.Command())
	Root().AddCommand(bootstrap.Command())
	Root().AddCommand(users.Command())
}
