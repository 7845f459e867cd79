package settingsstore

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CronExpression maps an import interval to a 5-field cron schedule.
// Unknown intervals map to daily.
func CronExpression(interval string) string {
	switch interval {
	case entities.CronIntervalHourly:
		return "0 * * * *"
	case entities.CronIntervalTwiceDaily:
		return "0 */12 * * *"
	default:
		return "0 0 * * *"
	}
}

// ValidateCronSchedule validates a cron schedule string
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// CronDescription returns a human-readable description of an import interval
func CronDescription(interval string) string {
	switch interval {
	case entities.CronIntervalHourly:
		return "Every hour at :00"
	case entities.CronIntervalTwiceDaily:
		return "Twice daily at midnight and noon"
	default:
		return "Daily at midnight"
	}
}

// GetNextRunTime calculates when the next import will run for an interval
func GetNextRunTime(interval string, from time.Time) (*time.Time, error) {
	sched, err := cronParser.Parse(CronExpression(interval))
	if err != nil {
		return nil, err
	}
	next := sched.Next(from)
	return &next, nil
}
