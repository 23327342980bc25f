package grouprunner

import (
	"testing"
)

func TestReportResults(t *testing.T) {
	// just test that it doesn't panic, including on nil input
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("ReportResults panic'd")
		}
	}()

	reporter := NewDefaultMetricsReporter()
	reporter.ReportResults("run-1", nil)
	reporter.ReportResults("run-1", runForFormatting(t))
}
