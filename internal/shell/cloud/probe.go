package cloud

import (
	"context"
	"regexp"
	"strings"

	"github.com/modelarena/funcdeploy/internal/core/capability"
)

var longFlagPattern = regexp.MustCompile(`--([a-z][a-z0-9-]*)`)

// AdvertisedFlags implements capability.Source by asking the CLI for the
// operation's own help text and extracting the long flags it lists. The
// probe runs fresh on every call so an upgraded binary is picked up
// immediately.
func (c *CLI) AdvertisedFlags(ctx context.Context, operation string) (capability.FlagSet, error) {
	args := append([]string{"serverless"}, strings.Fields(operation)...)
	args = append(args, "--help")
	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return ParseHelpFlags(out), nil
}

// ParseHelpFlags extracts the set of long flag names mentioned in help
// output.
func ParseHelpFlags(help []byte) capability.FlagSet {
	flags := make(capability.FlagSet)
	for _, m := range longFlagPattern.FindAllSubmatch(help, -1) {
		flags[string(m[1])] = struct{}{}
	}
	return flags
}
