package dashboard

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/parkyard/internal/journal"
	"github.com/zulandar/parkyard/internal/models"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// StartReporter schedules TakeReport on a 5-field cron expression. The
// caller stops the returned scheduler.
func StartReporter(schedule string, svc *Service, j *journal.Journal, log *slog.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithParser(cronParser))
	_, err := c.AddFunc(schedule, func() {
		rep, err := TakeReport(svc, j)
		if err != nil {
			log.Error("report failed", "err", err)
			return
		}
		log.Info("report saved", "id", rep.ID, "requests", rep.TotalRequests, "occupied", rep.OccupiedSlots)
	})
	if err != nil {
		return nil, fmt.Errorf("report schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}

// TakeReport computes the current analytics export and stores it.
func TakeReport(svc *Service, j *journal.Journal) (*models.ReportSnapshot, error) {
	export := svc.Analytics()
	payload, err := json.Marshal(export)
	if err != nil {
		return nil, fmt.Errorf("report: marshal: %w", err)
	}
	rep := &models.ReportSnapshot{
		TotalRequests:  export.Requests.Total,
		Completed:      export.Requests.Completed,
		Cancelled:      export.Requests.Cancelled,
		Active:         export.Requests.Active,
		OccupiedSlots:  export.System.OccupiedSlots,
		TotalSlots:     export.System.TotalSlots,
		CrossZoneCount: export.CrossZone.CrossZone,
		Payload:        string(payload),
		TakenAt:        export.Timestamp.UTC(),
	}
	if export.AverageDurationHours != nil {
		rep.AverageDuration = *export.AverageDurationHours * 3600
	}
	if err := j.SaveReport(rep); err != nil {
		return nil, err
	}
	return rep, nil
}
