package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqdshguy/wirebridge/pkg/cli/internal/output"
	"github.com/sqdshguy/wirebridge/pkg/emulation"
)

// ProfilesOutput represents JSON output format
type ProfilesOutput struct {
	Default  emulation.Profile   `json:"default"`
	Profiles []emulation.Profile `json:"profiles"`
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List supported emulation profiles",
	Long: `List every browser and HTTP client identity wirebridge can present, in the
order they are defined. The default profile is marked with an asterisk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles := emulation.Profiles()

		if jsonOutput {
			return output.JSON(ProfilesOutput{
				Default:  emulation.DefaultProfile,
				Profiles: profiles,
			})
		}

		w := output.Table()
		fmt.Fprintln(w, "PROFILE\tUSER AGENT")
		for _, p := range profiles {
			name := string(p)
			if p == emulation.DefaultProfile {
				name += " *"
			}
			fmt.Fprintf(w, "%s\t%s\n", name, p.UserAgent())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
