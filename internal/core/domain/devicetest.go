// internal/core/domain/devicetest.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TestResult is the overall outcome of a diagnostic run
type TestResult string

const (
	TestPassed  TestResult = "passed"
	TestFailed  TestResult = "failed"
	TestPartial TestResult = "partial"
)

// DeviceTest is one diagnostic record for a device, keyed by IMEI. Tests are
// recorded independently of inventory; an IMEI that never entered a lot can
// still carry test history.
type DeviceTest struct {
	TestID     uuid.UUID         `json:"test_id"`
	IMEI       string            `json:"imei"`
	Model      string            `json:"model,omitempty"`
	Result     TestResult        `json:"result"`
	Checks     map[string]string `json:"checks,omitempty"`
	BatteryPct int               `json:"battery_pct,omitempty"`
	Technician string            `json:"technician,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	TestedAt   time.Time         `json:"tested_at"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Validate performs domain validation on the test record
func (t *DeviceTest) Validate() error {
	if t.IMEI == "" {
		return fmt.Errorf("imei is required")
	}
	switch t.Result {
	case TestPassed, TestFailed, TestPartial:
	case "":
		return fmt.Errorf("result is required")
	default:
		return fmt.Errorf("invalid test result: %s", t.Result)
	}
	if t.BatteryPct < 0 || t.BatteryPct > 100 {
		return fmt.Errorf("battery_pct must be between 0 and 100")
	}
	return nil
}

// PrepareForStorage fills identifiers and timestamps before persisting
func (t *DeviceTest) PrepareForStorage() {
	if t.TestID == uuid.Nil {
		t.TestID = uuid.New()
	}
	now := time.Now()
	if t.TestedAt.IsZero() {
		t.TestedAt = now
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
}
