package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var timezoneCmd = &cobra.Command{
	Use:   "timezone [zone]",
	Short: "Show or set your day-boundary timezone",
	Long: `Show or set the IANA timezone that decides when your day rolls over.

Examples:
  dailyreset timezone
  dailyreset timezone Europe/Paris`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTimezone,
}

func runTimezone(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		user, err := c.Me()
		if err != nil {
			return err
		}
		fmt.Printf("Timezone: %s\n", user.Timezone)
		return nil
	}

	zone := args[0]
	if _, err := time.LoadLocation(zone); err != nil {
		return fmt.Errorf("unknown timezone: %s", zone)
	}

	if err := c.SetTimezone(zone); err != nil {
		return fmt.Errorf("failed to set timezone: %w", err)
	}

	fmt.Printf("Timezone set to %s. Your day now rolls over at midnight there.\n", zone)
	return nil
}
