// Package scenario loads scripted parking workloads from YAML and runs them
// against a System.
package scenario

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is an ordered list of steps.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one action. Vehicle-addressed actions resolve the
// vehicle's most recent request in the state the action requires.
type Step struct {
	Park     *ParkStep `yaml:"park,omitempty"`
	Submit   string    `yaml:"submit,omitempty"`
	Arrive   string    `yaml:"arrive,omitempty"`
	Depart   string    `yaml:"depart,omitempty"`
	Cancel   string    `yaml:"cancel,omitempty"`
	Rollback int       `yaml:"rollback,omitempty"`
	Advance  string    `yaml:"advance,omitempty"`
}

// ParkStep creates and submits a request.
type ParkStep struct {
	Vehicle string `yaml:"vehicle"`
	Zone    string `yaml:"zone"`
}

// Action names the single action a step carries.
func (s Step) Action() string {
	switch {
	case s.Park != nil:
		return "park"
	case s.Submit != "":
		return "submit"
	case s.Arrive != "":
		return "arrive"
	case s.Depart != "":
		return "depart"
	case s.Cancel != "":
		return "cancel"
	case s.Rollback != 0:
		return "rollback"
	case s.Advance != "":
		return "advance"
	}
	return ""
}

func (s Step) actionCount() int {
	n := 0
	for _, set := range []bool{s.Park != nil, s.Submit != "", s.Arrive != "", s.Depart != "", s.Cancel != "", s.Rollback != 0, s.Advance != ""} {
		if set {
			n++
		}
	}
	return n
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	var errs []string
	if len(sc.Steps) == 0 {
		errs = append(errs, "at least one step is required")
	}
	for i, st := range sc.Steps {
		n := i + 1
		switch st.actionCount() {
		case 0:
			errs = append(errs, fmt.Sprintf("step %d: no action", n))
			continue
		case 1:
		default:
			errs = append(errs, fmt.Sprintf("step %d: more than one action", n))
			continue
		}
		if st.Park != nil && (st.Park.Vehicle == "" || st.Park.Zone == "") {
			errs = append(errs, fmt.Sprintf("step %d: park needs vehicle and zone", n))
		}
		if st.Advance != "" {
			if d, err := time.ParseDuration(st.Advance); err != nil || d <= 0 {
				errs = append(errs, fmt.Sprintf("step %d: advance %q is not a positive duration", n, st.Advance))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("scenario: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
