package cli

import (
	"fmt"
	"time"

	"github.com/dailyflow/dailyreset/internal/checkpoint"
	"github.com/dailyflow/dailyreset/internal/client"
	"github.com/dailyflow/dailyreset/internal/logger"
	"github.com/dailyflow/dailyreset/internal/model"
)

// apiClient returns a logged-in API client or an actionable error
func apiClient() (*client.Client, error) {
	c, err := client.New(cfg.ServerURL)
	if err != nil {
		return nil, err
	}
	if !c.IsLoggedIn() {
		return nil, fmt.Errorf("not logged in. Run: dailyreset auth login")
	}
	return c, nil
}

// ensureFresh runs the daily rollover check before a task command.
//
// The local checkpoint is consulted first: if it already reads today,
// the server is not called at all. Otherwise the server runs (or skips)
// the rollover and the checkpoint advances to the day the server
// reported. Failures are logged and swallowed; the next command or the
// server's hourly sweep will retry.
func ensureFresh(c *client.Client) {
	cp, err := checkpoint.OpenDefault()
	if err != nil {
		logger.Warn("Local checkpoint unavailable", logger.F("error", err))
		cp = nil
	}
	if cp != nil {
		defer cp.Close()

		// The day boundary is the user's, not this machine's: a local
		// zone ahead of the account zone must not skip the server call.
		today := todayIn(c.Timezone())
		if day, ok, _ := cp.LastReset(c.UserID()); ok && day == today {
			return
		}
	}

	outcome, err := c.Rollover()
	if err != nil {
		logger.Warn("Rollover check failed", logger.F("error", err))
		return
	}

	logger.Debug("Rollover check", logger.F("status", outcome.Status.String()), logger.F("day", outcome.Day))

	if cp != nil && outcome.Day != "" {
		if err := cp.SetLastReset(c.UserID(), outcome.Day); err != nil {
			logger.Warn("Failed to advance local checkpoint", logger.F("error", err))
		}
	}
}

// todayIn returns the current day in the named IANA zone, falling back
// to the machine's local zone when the name is empty or unknown.
func todayIn(tz string) model.Day {
	loc := time.Local
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	return model.DayOf(time.Now(), loc)
}
