package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/version"
)

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display writes the summary to w, including what every registered
// component is and its live health.
func (s *Summary) Display(w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs (%s)\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds(), version.Get().Short())

	if registry == nil {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}

	descs := registry.Describe()
	if len(descs) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}

	fmt.Fprintf(w, "📦 Components\n")
	for i, d := range descs {
		fmt.Fprintf(w, "   %s %s [%s] %s\n", treePrefix(i, len(descs)), d.Name, d.Type, d.Details)
	}

	health := registry.HealthAll(context.Background())
	healthy := 0
	fmt.Fprintf(w, "\n🏥 Health Check\n")
	for i, h := range health {
		msg := ""
		if h.Message != "" {
			msg = fmt.Sprintf(" (%s)", h.Message)
		}
		fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(health)), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		if h.Status == component.StatusHealthy {
			healthy++
		}
	}

	if healthy == len(health) {
		fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n\n", healthy, len(health))
	} else {
		fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n\n", healthy, len(health))
	}
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
