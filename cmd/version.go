package cmd

import (
	"fmt"

	"github.com/turniptext/turniptext/internal/version"
)

// VersionCmd prints build information, adapted from the teacher's
// version command without functional change.
type VersionCmd struct {
	JSON  bool `help:"Output version info as JSON."`
	Short bool `help:"Output just the version string."`
}

func (v *VersionCmd) Run() error {
	info := version.GetBuildInfo()

	switch {
	case v.JSON:
		data, err := info.JSON()
		if err != nil {
			return fmt.Errorf("marshaling version info: %w", err)
		}
		fmt.Println(string(data))
	case v.Short:
		fmt.Println(info.Short())
	default:
		fmt.Println(info.String())
	}

	return nil
}
