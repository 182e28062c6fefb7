package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/parkyard/internal/clock"
	"github.com/zulandar/parkyard/internal/parking"
)

// ErrNoManualClock is returned by advance steps when the runner has no
// manual clock to move.
var ErrNoManualClock = errors.New("scenario: advance needs a manual clock")

// Result is the outcome of one step.
type Result struct {
	Step      int    // 1-based
	Action    string
	RequestID string // empty when the step did not resolve a request
	Detail    string
	Err       error
}

// OK reports whether the step succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Runner executes scenario steps against a System. A failing step is
// recorded and the run continues.
type Runner struct {
	System *parking.System
	Clock  *clock.Manual // required only for advance steps
}

// Run executes every step of sc in order.
func (r *Runner) Run(sc *Scenario) []Result {
	results := make([]Result, 0, len(sc.Steps))
	for i, st := range sc.Steps {
		res := r.step(st)
		res.Step = i + 1
		res.Action = st.Action()
		results = append(results, res)
	}
	return results
}

func (r *Runner) step(st Step) Result {
	s := r.System
	switch {
	case st.Park != nil:
		req, a, err := s.Park(parking.Vehicle{ID: st.Park.Vehicle}, st.Park.Zone)
		if err != nil {
			return Result{RequestID: req.ID, Err: err}
		}
		return Result{RequestID: req.ID, Detail: assignmentDetail(st.Park.Vehicle, a)}

	case st.Submit != "":
		req, err := s.ActiveForVehicle(st.Submit, parking.StateRequested)
		if err != nil {
			return Result{Err: err}
		}
		a, err := s.Submit(req.ID)
		if err != nil {
			return Result{RequestID: req.ID, Err: err}
		}
		return Result{RequestID: req.ID, Detail: assignmentDetail(st.Submit, a)}

	case st.Arrive != "":
		return r.byVehicle(st.Arrive, parking.StateAllocated, s.MarkArrived)

	case st.Depart != "":
		return r.byVehicle(st.Depart, parking.StateOccupied, s.MarkDeparted)

	case st.Cancel != "":
		// Prefer the allocated request so its slot is freed.
		if res := r.byVehicle(st.Cancel, parking.StateAllocated, s.Cancel); !errors.Is(res.Err, parking.ErrRequestNotFound) {
			return res
		}
		return r.byVehicle(st.Cancel, parking.StateRequested, s.Cancel)

	case st.Rollback != 0:
		ids, err := s.RollbackLast(st.Rollback)
		if err != nil {
			return Result{Err: err}
		}
		return Result{Detail: fmt.Sprintf("rolled back %v", ids)}

	case st.Advance != "":
		d, err := time.ParseDuration(st.Advance)
		if err != nil {
			return Result{Err: fmt.Errorf("scenario: advance: %w", err)}
		}
		if r.Clock == nil {
			return Result{Err: ErrNoManualClock}
		}
		r.Clock.Advance(d)
		return Result{Detail: fmt.Sprintf("clock now %s", r.Clock.Now().Format(time.RFC3339))}
	}
	return Result{Err: errors.New("scenario: empty step")}
}

func (r *Runner) byVehicle(vehicleID string, state parking.State, op func(string) (parking.Request, error)) Result {
	req, err := r.System.ActiveForVehicle(vehicleID, state)
	if err != nil {
		return Result{Err: err}
	}
	updated, err := op(req.ID)
	if err != nil {
		return Result{RequestID: req.ID, Err: err}
	}
	return Result{RequestID: req.ID, Detail: fmt.Sprintf("%s is %s", vehicleID, updated.State)}
}

func assignmentDetail(vehicleID string, a parking.Assignment) string {
	d := fmt.Sprintf("%s -> %s", vehicleID, a.Slot)
	if a.CrossZone {
		d += " (cross-zone)"
	}
	return d
}
