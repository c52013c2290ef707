package opts

import (
	"io"

	"github.com/walteh/fuzzpatch/pkg/config"
	"github.com/walteh/fuzzpatch/pkg/diag"
	"github.com/walteh/fuzzpatch/pkg/log"
)

// RootOpts contains shared options used by all commands. It is filled in
// before any command runs.
type RootOpts struct {
	Config  *config.Config
	Console *log.Logger
	Sink    diag.Sink
	Stdout  io.Writer
}
